package hash

import "hash/crc32"

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data. S3 expects it in
// ChecksumCRC32C as the base64 of its big-endian bytes, see
// blobstore/s3.computeCRC32C.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}
