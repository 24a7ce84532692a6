// # linecsv: Quote-Aware CSV Line Codec for Go
//
// linecsv splits a single line of delimited text into fields following CSV quoting
// conventions, and encodes fields back into a fully quoted line.
//
// # Decoding
//
// The decoder scans the line once and resolves runs of quote characters by their
// length: an odd run opens or closes a quoted field, an even run stands for
// escaped quotes (or, at the start of a field, an empty quoted field). Two modes
// are available:
//
//   - Strict rejects a quote inside an unquoted field (ErrUnexpectedQuote), anything
//     other than the separator after a closing quote (ErrInvalidSeparator) and a line
//     terminator outside quotes (ErrNewlineOutsideQuote).
//   - Loose keeps each of those characters as literal field content.
//
// A quoted field still open at the end of the line is flushed as is, unless
// Decoder.RequireClosedQuote is set. Bytes that are not valid UTF-8 are copied
// into the field unchanged.
//
// # Encoding
//
// EncodeField encloses a field in quotes and doubles embedded quotes; EncodeLine
// joins encoded fields with an arbitrary separator string.
//
// # Field types
//
// DecodeTo accepts any FieldBuffer and Sink, so fields can be produced as strings,
// byte slices, rune slices or pushed to a callback without an intermediate slice.
//
// # Streams
//
// Reader and Writer wrap the codec for line-oriented input and output, joining
// physical lines only while a quoted field is open.
package linecsv
