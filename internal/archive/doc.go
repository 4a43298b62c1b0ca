// Package archive reads the ZIP container structures that bundle NPY arrays
// into an NPZ archive.
//
// Only the parts needed for a sequential scan are implemented:
//
//   - Local file headers, via [NextEntry]. Each call decodes one header, its
//     name and extra field, and returns an [Entry] positioned at the payload.
//     The scan ends at the first header whose signature does not match, which
//     in a well formed archive is the central directory.
//   - Zip64 extended sizes. A 32-bit size of 0xFFFFFFFF means the real value is
//     stored in the zip64 extra record; [NextEntry] resolves it before returning
//     so callers only ever see concrete 64-bit sizes.
//   - The end of central directory record, via [ReadFooter], for callers that
//     want to validate an archive before scanning. Multi-disk and commented
//     archives are rejected.
//   - Payload decompression, via [Inflate], for the stored, deflate and zstd
//     methods registered in [Registry].
//
// The central directory itself is never read, and CRC32 checksums are not
// verified.
package archive
