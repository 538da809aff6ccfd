package bytecode

import "io"

// reader is the minimal capability the loader needs from its input: a
// source of individual bytes (for ULEB128 decoding) that is also a plain
// io.Reader (for fixed-width reads). *bufio.Reader satisfies it.
type reader interface {
	io.Reader
	io.ByteReader
}
