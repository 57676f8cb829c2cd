// Package mediameta extracts structured metadata from media containers.
//
// mediameta reads EXIF/TIFF tags, GPS coordinates, and track information
// (duration, dimensions, creation time) from JPEG, TIFF, HEIF/HEIC,
// MP4/MOV/3GP, Matroska/WebM, Fujifilm RAF, and Canon CR3 files through
// one unified entry point, reading as few bytes as possible from the
// underlying source.
//
// # Quick Start
//
// Reading Exif metadata from an image file:
//
//	ms, err := mediameta.FromFile("photo.heic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ms.Close()
//
//	parser := mediameta.New()
//	iter, err := parser.ParseExif(ms)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for iter.Next() {
//		e := iter.Entry()
//		if v, err := e.Value(); err == nil {
//			fmt.Printf("%s => %s\n", e.TagName(), v)
//		}
//	}
//
// Reading track metadata from a video file:
//
//	info, err := parser.ParseTrackInfo(ms)
//
// # Design
//
// A MediaSource wraps a file, byte slice, or stream and sniffs its
// container format from a small prefix. A MediaParser owns one growable
// read buffer, reused across parse calls, so batch workloads don't churn
// allocations. Container walkers descend only into the branches that can
// hold metadata: sample data, pixels, and clusters are seeked past
// unread.
//
// Exif parsing is lazy twice over: the iterator emits entries without
// resolving their values, and each value is decoded only when inspected.
// A malformed entry poisons itself alone; its siblings still resolve.
//
// # Sources
//
// Seek-capable sources (files, byte slices, io.ReadSeeker) let the
// walkers jump directly to known offsets. Plain io.Reader sources work
// too, but only forward: a parse that would need to move backward fails
// with an ordering error instead of buffering the whole stream.
package mediameta
