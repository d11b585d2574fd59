package schema

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the tables, columns and types in declaration order.
// Two schemas with the same fingerprint analyze every statement alike.
func (s *Schema) Fingerprint() uint64 {
	return xxh3.Hash(s.canonical())
}

// FingerprintHex is Fingerprint as a fixed-width hex string.
func (s *Schema) FingerprintHex() string {
	return fmt.Sprintf("%016x", s.Fingerprint())
}

// canonical encodes the schema with NUL separated names and a 0x01 byte
// closing every table.
func (s *Schema) canonical() []byte {
	var buf []byte
	for _, t := range s.tables {
		buf = append(buf, t.Name...)
		buf = append(buf, 0)
		for _, c := range t.Columns {
			buf = append(buf, c.Name...)
			buf = append(buf, 0)
			buf = append(buf, c.Type...)
			buf = append(buf, 0)
		}
		buf = append(buf, 1)
	}
	return buf
}
