package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrMalformedArchive indicates the input is not a readable ZIP archive
	// or lacks the META-INF/container.xml descriptor.
	ErrMalformedArchive = errors.New("epub: malformed archive")

	// ErrMissingManifest indicates the OPF package document named by the
	// container could not be located or decoded.
	ErrMissingManifest = errors.New("epub: package document missing or unreadable")

	// ErrDRMProtected indicates the ePub file is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	ErrDRMProtected = errors.New("epub: file is DRM protected")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")
)
