// Package gcode implements the fixed-schema G-code command model: parsing
// an ASCII line into a typed Record, and serializing a Record back to its
// canonical ASCII or binary wire form.
package gcode

// Param identifies one of the fixed parameter slots a Record can carry.
// Bit positions are wire-visible (see dataType bit layout) and must not be
// renumbered.
type Param int

const (
	ParamN Param = iota
	ParamM
	ParamG
	ParamX
	ParamY
	ParamZ
	ParamE
	ParamF
	ParamT
	ParamS
	ParamP
	ParamI
	ParamJ
	ParamR
	ParamD
	ParamString
	paramCount
)

// dataType bit positions, fixed by the wire protocol.
const (
	bitN = 1 << iota
	bitM
	bitG
	bitX
	bitY
	bitZ
	bitE
	bitUnused7
	bitF
	bitT
	bitS
	bitP
	bitUnused12
	bitUnused13
	bitUnused14
	bitString
	bitI
	bitJ
	bitR
	bitD
)

var paramBit = [paramCount]uint32{
	ParamN:      bitN,
	ParamM:      bitM,
	ParamG:      bitG,
	ParamX:      bitX,
	ParamY:      bitY,
	ParamZ:      bitZ,
	ParamE:      bitE,
	ParamF:      bitF,
	ParamT:      bitT,
	ParamS:      bitS,
	ParamP:      bitP,
	ParamI:      bitI,
	ParamJ:      bitJ,
	ParamR:      bitR,
	ParamD:      bitD,
	ParamString: bitString,
}

// initialDataType is the sentinel dataType of a freshly constructed or
// cleared Record: bits 7 and 12 are perpetually set by the wire protocol
// and carry no parameter meaning.
const initialDataType uint32 = 0x1080

// canonicalOrder is the fixed parameter emission order used by both
// GetASCII and GetBinary.
var canonicalOrder = []Param{
	ParamN, ParamM, ParamString, ParamG, ParamX, ParamY, ParamZ, ParamE,
	ParamF, ParamT, ParamS, ParamP, ParamI, ParamJ, ParamR, ParamD,
}

// paramLetter maps a Param to its single-letter wire identifier. ParamString
// has no letter: it is synthesized from an M-command's trailing text.
var paramLetter = [paramCount]byte{
	ParamN: 'N', ParamM: 'M', ParamG: 'G', ParamX: 'X', ParamY: 'Y',
	ParamZ: 'Z', ParamE: 'E', ParamF: 'F', ParamT: 'T', ParamS: 'S',
	ParamP: 'P', ParamI: 'I', ParamJ: 'J', ParamR: 'R', ParamD: 'D',
}

// stringTriggerCommands are the M-codes whose remainder of line is consumed
// verbatim into the string slot (filenames, status messages).
var stringTriggerCommands = map[string]bool{
	"23": true, "28": true, "29": true, "30": true, "32": true, "117": true,
}

// Record is the typed representation of one G-code line.
type Record struct {
	dataType        uint32
	parameters      [paramCount]string
	hostCommand     string
	isHostCommand   bool
	originalCommand string
	parsed          bool
	empty           bool
}

// New returns a freshly constructed, empty Record.
func New() *Record {
	return &Record{dataType: initialDataType, empty: true}
}

// Clear resets the Record to its initial empty state.
func (r *Record) Clear() {
	*r = Record{dataType: initialDataType, empty: true}
}

// IsEmpty reports whether the record holds no parameters and no host command.
func (r *Record) IsEmpty() bool {
	return r.empty
}

// IsParsed reports whether the record was successfully populated by Parse
// or by an explicit SetValue.
func (r *Record) IsParsed() bool {
	return r.parsed
}

// IsHostCommand reports whether the record is a host (`@...`) command.
func (r *Record) IsHostCommand() bool {
	return r.isHostCommand
}

// HostCommand returns the verbatim host command text (without trailing
// comment), or "" if this is not a host command.
func (r *Record) HostCommand() string {
	return r.hostCommand
}

// OriginalCommand returns the verbatim input line, trimmed of surrounding
// whitespace.
func (r *Record) OriginalCommand() string {
	return r.originalCommand
}

// HasParameter reports whether slot p is populated.
func (r *Record) HasParameter(p Param) bool {
	return r.dataType&paramBit[p] != 0
}

// GetValue returns the textual value stored in slot p, or "" if unset.
func (r *Record) GetValue(p Param) string {
	return r.parameters[p]
}

// SetValue stores v in slot p, marking the record parsed and non-empty.
func (r *Record) SetValue(p Param, v string) {
	r.parameters[p] = v
	r.dataType |= paramBit[p]
	r.parsed = true
	r.empty = false
}

// RemoveParameter clears slot p.
func (r *Record) RemoveParameter(p Param) {
	r.parameters[p] = ""
	r.dataType &^= paramBit[p]
}

// DataType returns the raw wire dataType bitmask.
func (r *Record) DataType() uint32 {
	return r.dataType
}
