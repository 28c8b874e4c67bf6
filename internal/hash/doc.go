// Package hash provides CRC32-Castagnoli (CRC32C) checksums.
//
// CRC32C is the checksum S3 accepts in the x-amz-checksum-crc32c header, so
// index uploads are verified end-to-end by the service:
//
//	checksum := hash.CRC32C(data)
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when available.
package hash
