// Package zap implements the ZAP text parser and the Z-Machine
// instruction encoder. The encoder is the instruction decoder of a
// Z-Machine interpreter run in reverse: the same operand-type byte
// packing and branch-offset layout a story file's bytecode is read with,
// here built up from text instead of torn down from bytes.
package zap

// OperandType is the 2-bit tag a VAR-form operand-type byte packs four
// of, and the tag every operand carries individually.
type OperandType int

const (
	TypeLarge    OperandType = 0b00
	TypeSmall    OperandType = 0b01
	TypeVariable OperandType = 0b10
	TypeOmitted  OperandType = 0b11
)

// Form is the instruction's byte-layout family.
type Form int

const (
	FormLong Form = iota
	FormShort
	FormVar
	FormExt
)

// Count is how many operands an opcode number's form/count combination
// implies, independent of how many are actually present in a VAR form.
type Count int

const (
	Count0 Count = iota
	Count1
	Count2
	CountVar
)

// opcodeInfo is a static entry in the mnemonic table.
type opcodeInfo struct {
	number     uint8 // opcode number within its form (0-31)
	count      Count
	minVersion int
	hasStore   bool
	hasBranch  bool
}

// opcodeTable maps every ZAP mnemonic this compiler emits (and the
// handful of common ZIL-style aliases) to its Z-Machine opcode number,
// grounded on the dispatch comments of a Z-Machine interpreter's main
// step loop (the mnemonic a given case there implements is exactly the
// mnemonic this table assigns the matching opcode number to).
var opcodeTable = map[string]opcodeInfo{
	// 2OP
	"JE":          {1, Count2, 0, false, true},
	"JL":          {2, Count2, 0, false, true},
	"JG":          {3, Count2, 0, false, true},
	"DEC_CHK":     {4, Count2, 3, false, true},
	"INC_CHK":     {5, Count2, 3, false, true},
	"JIN":         {6, Count2, 0, false, true},
	"TEST":        {7, Count2, 0, false, true},
	"OR":          {8, Count2, 0, true, false},
	"AND":         {9, Count2, 0, true, false},
	"TEST_ATTR":   {10, Count2, 0, false, true},
	"SET_ATTR":    {11, Count2, 0, false, false},
	"CLEAR_ATTR":  {12, Count2, 0, false, false},
	"STORE":       {13, Count2, 0, false, false},
	"INSERT_OBJ":  {14, Count2, 0, false, false},
	"LOADW":       {15, Count2, 0, true, false},
	"LOADB":       {16, Count2, 0, true, false},
	"GET_PROP":    {17, Count2, 0, true, false},
	"GET_PROP_ADDR": {18, Count2, 0, true, false},
	"GET_NEXT_PROP": {19, Count2, 0, true, false},
	"ADD":         {20, Count2, 0, true, false},
	"SUB":         {21, Count2, 0, true, false},
	"MUL":         {22, Count2, 0, true, false},
	"DIV":         {23, Count2, 0, true, false},
	"MOD":         {24, Count2, 0, true, false},
	"CALL_2S":     {25, Count2, 4, true, false},
	"CALL_2N":     {26, Count2, 5, false, false},
	"SET_COLOUR":  {27, Count2, 5, false, false},
	"THROW":       {28, Count2, 5, false, false},

	// 1OP
	"JZ":          {0, Count1, 0, false, true},
	"GET_SIBLING":  {1, Count1, 0, true, true},
	"GET_CHILD":    {2, Count1, 0, true, true},
	"GET_PARENT":   {3, Count1, 0, true, false},
	"GET_PROP_LEN": {4, Count1, 0, true, false},
	"INC":          {5, Count1, 0, false, false},
	"DEC":          {6, Count1, 0, false, false},
	"PRINT_ADDR":   {7, Count1, 0, false, false},
	"CALL_1S":      {8, Count1, 4, true, false},
	"REMOVE_OBJ":   {9, Count1, 0, false, false},
	"PRINT_OBJ":    {10, Count1, 0, false, false},
	"RET":          {11, Count1, 0, false, false},
	"JUMP":         {12, Count1, 0, false, false},
	"PRINT_PADDR":  {13, Count1, 0, false, false},
	"LOAD":         {14, Count1, 0, true, false},
	"NOT":          {15, Count1, 0, true, false},
	"CALL_1N":      {15, Count1, 5, false, false},

	// 0OP
	"RTRUE":    {0, Count0, 0, false, false},
	"RFALSE":   {1, Count0, 0, false, false},
	"PRINT":    {2, Count0, 0, false, false},
	"PRINTRET": {3, Count0, 0, false, false},
	"NOP":      {4, Count0, 0, false, false},
	"SAVE":     {5, Count0, 0, false, true},
	"RESTORE":  {6, Count0, 0, false, true},
	"RESTART":  {7, Count0, 0, false, false},
	"RET_POPPED": {8, Count0, 0, false, false},
	"POP":      {9, Count0, 0, false, false},
	"QUIT":     {10, Count0, 0, false, false},
	"NEWLINE":  {11, Count0, 0, false, false},
	"VERIFY":   {13, Count0, 0, false, true},
	"PIRACY":   {15, Count0, 0, false, true},

	// VAR
	"CALL":         {0, CountVar, 0, true, false},
	"STOREW":       {1, CountVar, 0, false, false},
	"STOREB":       {2, CountVar, 0, false, false},
	"PUT_PROP":     {3, CountVar, 0, false, false},
	"READ":         {4, CountVar, 0, false, false},
	"PRINT_CHAR":   {5, CountVar, 0, false, false},
	"PRINTNUM":     {6, CountVar, 0, false, false},
	"PRINT_DESC":   {6, CountVar, 0, false, false},
	"RANDOM":       {7, CountVar, 0, true, false},
	"PUSH":         {8, CountVar, 0, false, false},
	"PULL":         {9, CountVar, 0, false, false},
	"SPLIT_WINDOW": {10, CountVar, 3, false, false},
	"SET_WINDOW":   {11, CountVar, 3, false, false},
	"CALL_VS2":     {12, CountVar, 4, true, false},
	"ERASE_WINDOW": {13, CountVar, 4, false, false},
	"SET_CURSOR":   {15, CountVar, 4, false, false},
	"SET_TEXT_STYLE": {17, CountVar, 4, false, false},
	"BUFFER_MODE":  {18, CountVar, 4, false, false},
	"OUTPUT_STREAM": {19, CountVar, 3, false, false},
	"SOUND_EFFECT":  {21, CountVar, 5, false, false},
	"READ_CHAR":    {22, CountVar, 4, true, false},
	"SCAN_TABLE":   {23, CountVar, 4, true, true},
	"CALL_VN":      {25, CountVar, 5, false, false},
	"CALL_VN2":     {26, CountVar, 5, false, false},
	"TOKENISE":     {27, CountVar, 5, false, false},
	"COPY_TABLE":   {28, CountVar, 5, false, false},
	"PRINT_TABLE":  {30, CountVar, 5, false, false},
	"CHECK_ARG_COUNT": {31, CountVar, 5, false, true},

	// Aliases this compiler's code generator emits for <TELL>. PRINTI
	// takes a string's packed address the way PRINT_PADDR does; PRINTD
	// and PRINTR both print a numeric operand the way PRINTNUM does.
	// CRLF is the conventional ZIL name for NEWLINE.
	"PRINTI": {13, Count1, 0, false, false},
	"PRINTD": {6, CountVar, 0, false, false},
	"PRINTR": {6, CountVar, 0, false, false},
	"CRLF":   {11, Count0, 0, false, false},

	// ZIL-style predicate/accessor aliases. ZIL source calls these by the
	// names below; the ZAP text this compiler emits, and the ZAP text it
	// must also be able to assemble back in, uses them interchangeably
	// with the opcode mnemonics they alias.
	"EQUAL?":   {1, Count2, 0, false, true},   // JE
	"ZERO?":    {0, Count1, 0, false, true},   // JZ
	"GRTR?":    {3, Count2, 0, false, true},   // JG
	"LESS?":    {2, Count2, 0, false, true},   // JL
	"FSET?":    {10, Count2, 0, false, true},  // TEST_ATTR
	"IN?":      {6, Count2, 0, false, true},   // JIN
	"FSET":     {11, Count2, 0, false, false}, // SET_ATTR
	"FCLEAR":   {12, Count2, 0, false, false}, // CLEAR_ATTR
	"MOVE":     {14, Count2, 0, false, false}, // INSERT_OBJ
	"REMOVE":   {9, Count1, 0, false, false},  // REMOVE_OBJ
	"FIRST?":   {2, Count1, 0, true, true},    // GET_CHILD
	"NEXT?":    {1, Count1, 0, true, true},    // GET_SIBLING
	"LOC":      {3, Count1, 0, true, false},   // GET_PARENT
	"GET":      {15, Count2, 0, true, false},  // LOADW
	"GETB":     {16, Count2, 0, true, false},  // LOADB
	"PUT":      {1, CountVar, 0, false, false}, // STOREW
	"PUTB":     {2, CountVar, 0, false, false}, // STOREB
	"GETP":     {17, Count2, 0, true, false},  // GET_PROP
	"PUTP":     {3, CountVar, 0, false, false}, // PUT_PROP
	"GETPT":    {18, Count2, 0, true, false},  // GET_PROP_ADDR
	"PTSIZE":   {4, Count1, 0, true, false},   // GET_PROP_LEN
	"PRINTN":   {6, CountVar, 0, false, false}, // PRINTNUM
	"PRINTB":   {30, CountVar, 5, false, false}, // PRINT_TABLE
}

// Lookup returns the opcode table entry for mnemonic, which is
// case-normalized by the caller (ZAP mnemonics are already uppercase).
func Lookup(mnemonic string) (opcodeInfo, bool) {
	info, ok := opcodeTable[mnemonic]
	return info, ok
}
