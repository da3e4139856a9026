// Package packet frames discrete messages on a byte stream.
//
// Every packet is a 4-byte big-endian unsigned length followed by exactly that
// many payload bytes. There is no magic number and no version field, so the
// stream is not self-describing: the payload layout is owned by the caller.
//
// Read makes no distinction between "no more data" and an I/O failure other
// than the error value itself. Consumers that replay a stream treat any error
// at a packet boundary as the end of the stream; Truncated lets them log
// corruption separately from a clean end.
package packet
