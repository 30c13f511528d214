// Package qrcode renders registration confirmation codes as QR images for
// door scanning, either as raw PNG bytes or as a data-URI string embeddable
// in an <img> tag.
//
// It is a thin wrapper around github.com/skip2/go-qrcode adding input
// validation and sensible size defaults.
package qrcode
