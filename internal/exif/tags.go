package exif

import "fmt"

// ExifTag identifies one IFD entry. GPS tags share the low numeric range
// with primary tags; the entry's IFD origin disambiguates them.
type ExifTag uint16

// Primary / Exif IFD tags.
const (
	TagImageWidth               ExifTag = 0x0100
	TagImageHeight              ExifTag = 0x0101
	TagBitsPerSample            ExifTag = 0x0102
	TagCompression              ExifTag = 0x0103
	TagImageDescription         ExifTag = 0x010E
	TagMake                     ExifTag = 0x010F
	TagModel                    ExifTag = 0x0110
	TagOrientation              ExifTag = 0x0112
	TagXResolution              ExifTag = 0x011A
	TagYResolution              ExifTag = 0x011B
	TagResolutionUnit           ExifTag = 0x0128
	TagSoftware                 ExifTag = 0x0131
	TagModifyDate               ExifTag = 0x0132
	TagArtist                   ExifTag = 0x013B
	TagYCbCrPositioning         ExifTag = 0x0213
	TagCopyright                ExifTag = 0x8298
	TagExposureTime             ExifTag = 0x829A
	TagFNumber                  ExifTag = 0x829D
	TagExifOffset               ExifTag = 0x8769
	TagExposureProgram          ExifTag = 0x8822
	TagGPSInfo                  ExifTag = 0x8825
	TagISOSpeedRatings          ExifTag = 0x8827
	TagSensitivityType          ExifTag = 0x8830
	TagRecommendedExposureIndex ExifTag = 0x8832
	TagExifVersion              ExifTag = 0x9000
	TagDateTimeOriginal         ExifTag = 0x9003
	TagCreateDate               ExifTag = 0x9004
	TagOffsetTime               ExifTag = 0x9010
	TagOffsetTimeOriginal       ExifTag = 0x9011
	TagOffsetTimeDigitized      ExifTag = 0x9012
	TagShutterSpeedValue        ExifTag = 0x9201
	TagApertureValue            ExifTag = 0x9202
	TagBrightnessValue          ExifTag = 0x9203
	TagExposureCompensation     ExifTag = 0x9204
	TagMaxApertureValue         ExifTag = 0x9205
	TagMeteringMode             ExifTag = 0x9207
	TagLightSource              ExifTag = 0x9208
	TagFlash                    ExifTag = 0x9209
	TagFocalLength              ExifTag = 0x920A
	TagMakerNote                ExifTag = 0x927C
	TagUserComment              ExifTag = 0x9286
	TagSubSecTime               ExifTag = 0x9290
	TagSubSecTimeOriginal       ExifTag = 0x9291
	TagSubSecTimeDigitized      ExifTag = 0x9292
	TagFlashpixVersion          ExifTag = 0xA000
	TagColorSpace               ExifTag = 0xA001
	TagExifImageWidth           ExifTag = 0xA002
	TagExifImageHeight          ExifTag = 0xA003
	TagInteropOffset            ExifTag = 0xA005
	TagSensingMethod            ExifTag = 0xA217
	TagExposureMode             ExifTag = 0xA402
	TagWhiteBalance             ExifTag = 0xA403
	TagDigitalZoomRatio         ExifTag = 0xA404
	TagFocalLengthIn35mmFilm    ExifTag = 0xA405
	TagSceneCaptureType         ExifTag = 0xA406
	TagLensMake                 ExifTag = 0xA433
	TagLensModel                ExifTag = 0xA434
)

// GPS IFD tags.
const (
	TagGPSVersionID       ExifTag = 0x0000
	TagGPSLatitudeRef     ExifTag = 0x0001
	TagGPSLatitude        ExifTag = 0x0002
	TagGPSLongitudeRef    ExifTag = 0x0003
	TagGPSLongitude       ExifTag = 0x0004
	TagGPSAltitudeRef     ExifTag = 0x0005
	TagGPSAltitude        ExifTag = 0x0006
	TagGPSTimeStamp       ExifTag = 0x0007
	TagGPSSpeedRef        ExifTag = 0x000C
	TagGPSSpeed           ExifTag = 0x000D
	TagGPSImgDirectionRef ExifTag = 0x0010
	TagGPSImgDirection    ExifTag = 0x0011
	TagGPSDestBearingRef  ExifTag = 0x0017
	TagGPSDestBearing     ExifTag = 0x0018
	TagGPSDateStamp       ExifTag = 0x001D
)

var tagNames = map[ExifTag]string{
	TagImageWidth:               "ImageWidth",
	TagImageHeight:              "ImageHeight",
	TagBitsPerSample:            "BitsPerSample",
	TagCompression:              "Compression",
	TagImageDescription:         "ImageDescription",
	TagMake:                     "Make",
	TagModel:                    "Model",
	TagOrientation:              "Orientation",
	TagXResolution:              "XResolution",
	TagYResolution:              "YResolution",
	TagResolutionUnit:           "ResolutionUnit",
	TagSoftware:                 "Software",
	TagModifyDate:               "ModifyDate",
	TagArtist:                   "Artist",
	TagYCbCrPositioning:         "YCbCrPositioning",
	TagCopyright:                "Copyright",
	TagExposureTime:             "ExposureTime",
	TagFNumber:                  "FNumber",
	TagExifOffset:               "ExifOffset",
	TagExposureProgram:          "ExposureProgram",
	TagGPSInfo:                  "GPSInfo",
	TagISOSpeedRatings:          "ISOSpeedRatings",
	TagSensitivityType:          "SensitivityType",
	TagRecommendedExposureIndex: "RecommendedExposureIndex",
	TagExifVersion:              "ExifVersion",
	TagDateTimeOriginal:         "DateTimeOriginal",
	TagCreateDate:               "CreateDate",
	TagOffsetTime:               "OffsetTime",
	TagOffsetTimeOriginal:       "OffsetTimeOriginal",
	TagOffsetTimeDigitized:      "OffsetTimeDigitized",
	TagShutterSpeedValue:        "ShutterSpeedValue",
	TagApertureValue:            "ApertureValue",
	TagBrightnessValue:          "BrightnessValue",
	TagExposureCompensation:     "ExposureCompensation",
	TagMaxApertureValue:         "MaxApertureValue",
	TagMeteringMode:             "MeteringMode",
	TagLightSource:              "LightSource",
	TagFlash:                    "Flash",
	TagFocalLength:              "FocalLength",
	TagMakerNote:                "MakerNote",
	TagUserComment:              "UserComment",
	TagSubSecTime:               "SubSecTime",
	TagSubSecTimeOriginal:       "SubSecTimeOriginal",
	TagSubSecTimeDigitized:      "SubSecTimeDigitized",
	TagFlashpixVersion:          "FlashpixVersion",
	TagColorSpace:               "ColorSpace",
	TagExifImageWidth:           "ExifImageWidth",
	TagExifImageHeight:          "ExifImageHeight",
	TagInteropOffset:            "InteropOffset",
	TagSensingMethod:            "SensingMethod",
	TagExposureMode:             "ExposureMode",
	TagWhiteBalance:             "WhiteBalance",
	TagDigitalZoomRatio:         "DigitalZoomRatio",
	TagFocalLengthIn35mmFilm:    "FocalLengthIn35mmFilm",
	TagSceneCaptureType:         "SceneCaptureType",
	TagLensMake:                 "LensMake",
	TagLensModel:                "LensModel",
}

var gpsTagNames = map[ExifTag]string{
	TagGPSVersionID:       "GPSVersionID",
	TagGPSLatitudeRef:     "GPSLatitudeRef",
	TagGPSLatitude:        "GPSLatitude",
	TagGPSLongitudeRef:    "GPSLongitudeRef",
	TagGPSLongitude:       "GPSLongitude",
	TagGPSAltitudeRef:     "GPSAltitudeRef",
	TagGPSAltitude:        "GPSAltitude",
	TagGPSTimeStamp:       "GPSTimeStamp",
	TagGPSSpeedRef:        "GPSSpeedRef",
	TagGPSSpeed:           "GPSSpeed",
	TagGPSImgDirectionRef: "GPSImgDirectionRef",
	TagGPSImgDirection:    "GPSImgDirection",
	TagGPSDestBearingRef:  "GPSDestBearingRef",
	TagGPSDestBearing:     "GPSDestBearing",
	TagGPSDateStamp:       "GPSDateStamp",
}

// String returns the tag's dictionary name, or the hex code for tags
// outside the dictionary.
func (t ExifTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04X)", uint16(t))
}

// nameIn resolves the tag's display name within its owning IFD, so the
// overlapping GPS ids render as GPS names.
func (t ExifTag) nameIn(origin Origin) string {
	if origin == OriginGPS {
		if name, ok := gpsTagNames[t]; ok {
			return name
		}
	}
	return t.String()
}

// isDateTag reports whether the tag's ASCII value is an Exif datetime
// ("YYYY:MM:DD HH:MM:SS").
func (t ExifTag) isDateTag() bool {
	switch t {
	case TagModifyDate, TagDateTimeOriginal, TagCreateDate:
		return true
	default:
		return false
	}
}
