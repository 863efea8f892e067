package codegen

// callMapping maps a ZIL function-call head atom to its ZAP mnemonic.
// Atoms absent from this table are lowered as CALL to a user routine.
// minVersion is 0 for version-independent opcodes; version-gated entries
// return an empty mnemonic from lookupMnemonic when the target version is
// too low, which the generator treats as "fall back to user call".
type mnemonicEntry struct {
	mnemonic   string
	minVersion int
}

var callMapping = map[string]mnemonicEntry{
	// Arithmetic
	"ADD": {"ADD", 0}, "SUB": {"SUB", 0}, "MUL": {"MUL", 0}, "DIV": {"DIV", 0}, "MOD": {"MOD", 0},
	"BAND": {"AND", 0}, "BOR": {"OR", 0}, "BCOM": {"NOT", 0},

	// Comparison. L=? ("less than or equal") and G=? ("greater than or
	// equal") have no dedicated opcode; they're the negation of GRTR?/
	// LESS? and are lowered onto JG/JL with inverted branch polarity
	// (see invertedPredicates below).
	"EQUAL?": {"JE", 0}, "ZERO?": {"JZ", 0}, "GRTR?": {"JG", 0}, "LESS?": {"JL", 0},
	"L=?": {"JG", 0}, "G=?": {"JL", 0},

	// Object / property / flag
	"MOVE": {"INSERT_OBJ", 0}, "REMOVE": {"REMOVE_OBJ", 0},
	"FSET": {"SET_ATTR", 0}, "FCLEAR": {"CLEAR_ATTR", 0}, "FSET?": {"TEST_ATTR", 0},
	"IN?": {"JIN", 0}, "FIRST?": {"GET_CHILD", 0}, "NEXT?": {"GET_SIBLING", 0}, "LOC": {"GET_PARENT", 0},
	"GETP": {"GET_PROP", 0}, "PUTP": {"PUT_PROP", 0}, "GETPT": {"GET_PROP_ADDR", 0}, "PTSIZE": {"GET_PROP_LEN", 0},

	// Tables / memory
	"GET": {"LOADW", 0}, "GETB": {"LOADB", 0}, "PUT": {"STOREW", 0}, "PUTB": {"STOREB", 0},

	// Output
	"PRINT": {"PRINT", 0}, "PRINTN": {"PRINTNUM", 0}, "PRINTD": {"PRINT_DESC", 0},
	"PRINTB": {"PRINT_TABLE", 0}, "PRINTR": {"PRINTRET", 0}, "CRLF": {"NEWLINE", 0}, "CR": {"NEWLINE", 0},

	// Stack
	"PUSH": {"PUSH", 0}, "POP": {"POP", 0},

	// Control / system
	"RANDOM": {"RANDOM", 0}, "QUIT": {"QUIT", 0}, "RESTART": {"RESTART", 0},
	"VERIFY": {"VERIFY", 0}, "USL": {"USL", 0}, "READ": {"READ", 0},

	// Version-gated
	"SOUND":    {"SOUND_EFFECT", 5},
	"SET_COLOUR": {"SET_COLOUR", 5},
	"THROW":    {"THROW", 5},
}

// lookupMnemonic returns the ZAP mnemonic for name at the given target
// version, or ("", false) if name has no mapping or the mapping requires
// a newer version than the target.
func lookupMnemonic(name string, version int) (string, bool) {
	e, ok := callMapping[name]
	if !ok {
		return "", false
	}
	if e.minVersion > 0 && version < e.minVersion {
		return "", false
	}
	return e.mnemonic, true
}

// comparisonPredicates names the ZIL heads lowered as a branch-producing
// predicate rather than an arithmetic/value-producing call.
var comparisonPredicates = map[string]bool{
	"EQUAL?": true, "ZERO?": true, "GRTR?": true, "LESS?": true,
	"L=?": true, "G=?": true, "FSET?": true, "IN?": true,
}

// invertedPredicates names predicates whose mnemonic mapping tests the
// opposite condition, so emitPredicateBranch must flip branch-on-true/
// branch-on-false before picking the '/' or '\' prefix.
var invertedPredicates = map[string]bool{
	"L=?": true, "G=?": true,
}
