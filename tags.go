package mediameta

import "github.com/simonhull/mediameta/internal/exif"

// ExifTag identifies one IFD entry. The GPS namespace overlaps the
// primary one numerically; an entry's IFD origin keeps them apart.
type ExifTag = exif.ExifTag

// Primary / Exif IFD tags.
const (
	TagImageWidth               = exif.TagImageWidth
	TagImageHeight              = exif.TagImageHeight
	TagBitsPerSample            = exif.TagBitsPerSample
	TagCompression              = exif.TagCompression
	TagImageDescription         = exif.TagImageDescription
	TagMake                     = exif.TagMake
	TagModel                    = exif.TagModel
	TagOrientation              = exif.TagOrientation
	TagXResolution              = exif.TagXResolution
	TagYResolution              = exif.TagYResolution
	TagResolutionUnit           = exif.TagResolutionUnit
	TagSoftware                 = exif.TagSoftware
	TagModifyDate               = exif.TagModifyDate
	TagArtist                   = exif.TagArtist
	TagYCbCrPositioning         = exif.TagYCbCrPositioning
	TagCopyright                = exif.TagCopyright
	TagExposureTime             = exif.TagExposureTime
	TagFNumber                  = exif.TagFNumber
	TagExifOffset               = exif.TagExifOffset
	TagExposureProgram          = exif.TagExposureProgram
	TagGPSInfo                  = exif.TagGPSInfo
	TagISOSpeedRatings          = exif.TagISOSpeedRatings
	TagSensitivityType          = exif.TagSensitivityType
	TagRecommendedExposureIndex = exif.TagRecommendedExposureIndex
	TagExifVersion              = exif.TagExifVersion
	TagDateTimeOriginal         = exif.TagDateTimeOriginal
	TagCreateDate               = exif.TagCreateDate
	TagOffsetTime               = exif.TagOffsetTime
	TagOffsetTimeOriginal       = exif.TagOffsetTimeOriginal
	TagOffsetTimeDigitized      = exif.TagOffsetTimeDigitized
	TagShutterSpeedValue        = exif.TagShutterSpeedValue
	TagApertureValue            = exif.TagApertureValue
	TagBrightnessValue          = exif.TagBrightnessValue
	TagExposureCompensation     = exif.TagExposureCompensation
	TagMaxApertureValue         = exif.TagMaxApertureValue
	TagMeteringMode             = exif.TagMeteringMode
	TagLightSource              = exif.TagLightSource
	TagFlash                    = exif.TagFlash
	TagFocalLength              = exif.TagFocalLength
	TagMakerNote                = exif.TagMakerNote
	TagUserComment              = exif.TagUserComment
	TagSubSecTime               = exif.TagSubSecTime
	TagSubSecTimeOriginal       = exif.TagSubSecTimeOriginal
	TagSubSecTimeDigitized      = exif.TagSubSecTimeDigitized
	TagFlashpixVersion          = exif.TagFlashpixVersion
	TagColorSpace               = exif.TagColorSpace
	TagExifImageWidth           = exif.TagExifImageWidth
	TagExifImageHeight          = exif.TagExifImageHeight
	TagInteropOffset            = exif.TagInteropOffset
	TagSensingMethod            = exif.TagSensingMethod
	TagExposureMode             = exif.TagExposureMode
	TagWhiteBalance             = exif.TagWhiteBalance
	TagDigitalZoomRatio         = exif.TagDigitalZoomRatio
	TagFocalLengthIn35mmFilm    = exif.TagFocalLengthIn35mmFilm
	TagSceneCaptureType         = exif.TagSceneCaptureType
	TagLensMake                 = exif.TagLensMake
	TagLensModel                = exif.TagLensModel
)

// GPS IFD tags.
const (
	TagGPSVersionID       = exif.TagGPSVersionID
	TagGPSLatitudeRef     = exif.TagGPSLatitudeRef
	TagGPSLatitude        = exif.TagGPSLatitude
	TagGPSLongitudeRef    = exif.TagGPSLongitudeRef
	TagGPSLongitude       = exif.TagGPSLongitude
	TagGPSAltitudeRef     = exif.TagGPSAltitudeRef
	TagGPSAltitude        = exif.TagGPSAltitude
	TagGPSTimeStamp       = exif.TagGPSTimeStamp
	TagGPSSpeedRef        = exif.TagGPSSpeedRef
	TagGPSSpeed           = exif.TagGPSSpeed
	TagGPSImgDirectionRef = exif.TagGPSImgDirectionRef
	TagGPSImgDirection    = exif.TagGPSImgDirection
	TagGPSDestBearingRef  = exif.TagGPSDestBearingRef
	TagGPSDestBearing     = exif.TagGPSDestBearing
	TagGPSDateStamp       = exif.TagGPSDateStamp
)
