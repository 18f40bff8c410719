package table

import (
	"encoding/binary"
	"hash/crc32"
)

// EthernetPolynomial is the bit-reflected CRC-32 polynomial used by IEEE 802.3.
const EthernetPolynomial = 0xEDB88320

// ethernetTable is the lookup table for EthernetPolynomial. crc32.IEEETable
// is the same table; it is rebuilt from the constant so the polynomial is
// stated in one place.
var ethernetTable = crc32.MakeTable(EthernetPolynomial)

// EthernetCRC32 computes the Ethernet CRC32 of native-order words. Each word
// is fed least-significant byte first. The CRC of no words is 0.
func EthernetCRC32(words []uint32) uint32 {
	return ChecksumBytes(wordBytes(words))
}

// ChecksumBytes computes the Ethernet CRC32 of a raw byte stream.
func ChecksumBytes(data []byte) uint32 {
	return crc32.Checksum(data, ethernetTable)
}

// wordBytes serializes words little-endian.
func wordBytes(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}
