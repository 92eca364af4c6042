// Package codec converts between compressed image files and pixfilter images.
//
// Decoding accepts PNG, JPEG and GIF (standard library) plus BMP, TIFF and
// WebP (golang.org/x/image) and always yields an RGB image: grayscale and
// paletted inputs are expanded, alpha is dropped without compositing.
// Straight-alpha inputs (8- and 16-bit RGBA PNGs) keep the color of fully
// transparent pixels; premultiplied decoder outputs cannot, and those pixels
// come out black.
// Encoding writes PNG or JPEG; single-channel images are written as
// grayscale.
package codec
