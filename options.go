package mediameta

// Option configures a MediaParser.
//
// Options use the functional options pattern:
//
//	parser := mediameta.New(
//	    mediameta.WithBufferCapacity(256 << 10),
//	    mediameta.WithoutSubIFDs(),
//	)
type Option func(*parserOptions)

type parserOptions struct {
	bufferCapacity int  // initial read-buffer capacity
	subIFDs        bool // descend into Exif/GPS/Interop sub-IFDs
}

func defaultParserOptions() parserOptions {
	return parserOptions{subIFDs: true}
}

// WithBufferCapacity pre-sizes the parser's read buffer. Useful when the
// typical metadata payload size is known; the buffer still grows on
// demand.
func WithBufferCapacity(n int) Option {
	return func(o *parserOptions) {
		if n > 0 {
			o.bufferCapacity = n
		}
	}
}

// WithoutSubIFDs limits Exif iteration to the primary IFD chain, skipping
// the Exif, GPS, and Interop sub-directories.
func WithoutSubIFDs() Option {
	return func(o *parserOptions) {
		o.subIFDs = false
	}
}
