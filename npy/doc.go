// Package npy loads NumPy arrays from standalone .npy files and from .npz
// archives.
//
// An .npy file is a short text header describing the element type, shape and
// memory order, followed by the raw little-endian element data. An .npz file
// is a ZIP archive whose members are .npy files, each either stored or
// compressed. Members are found by scanning local headers from the start of
// the archive, so the central directory is never consulted:
//
//	arrays, err := npy.LoadArchive("weights.npz")
//	if err != nil {
//		return err
//	}
//	w, err := npy.Values[float32](arrays["w"])
//
// Only little-endian and byte-order-free element types are supported; arrays
// are returned as stored and never byte-swapped or reordered.
package npy
