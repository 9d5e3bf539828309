package assemble

import (
	"errors"
	"fmt"
)

// Variant identifies the capability tier of a document backend.
type Variant string

const (
	// VariantFull supports concatenation and renumbering overlays.
	VariantFull Variant = "full"
	// VariantMergeOnly supports concatenation; overlays degrade to plain
	// output.
	VariantMergeOnly Variant = "merge-only"
	// VariantUnavailable supports nothing; every operation fails.
	VariantUnavailable Variant = "unavailable"
)

// Capabilities describes what a backend can do. The engine is written once
// against Backend and never branches on the concrete implementation.
type Capabilities struct {
	Merge   bool `json:"merge"`
	Overlay bool `json:"overlay"`
}

// Stamp is one page's overlay instruction. A masked stamp fills the label
// rectangle without printing visible text; it hides pre-existing page-number
// artifacts on continuation pages of a multi-page question.
type Stamp struct {
	Label  string `json:"label"`
	Masked bool   `json:"masked"`
}

// Overlay anchors. Masking is defined only for the two center anchors;
// corner labels are drawn without a backing rectangle.
const (
	AnchorTopCenter    = "tc"
	AnchorBottomCenter = "bc"
	AnchorTopLeft      = "tl"
	AnchorTopRight     = "tr"
	AnchorBottomLeft   = "bl"
	AnchorBottomRight  = "br"
)

// ValidAnchor reports whether anchor names a supported overlay position.
func ValidAnchor(anchor string) bool {
	switch anchor {
	case AnchorTopCenter, AnchorBottomCenter, AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight:
		return true
	}
	return false
}

// CenterAnchor reports whether anchor is one of the two masking positions.
func CenterAnchor(anchor string) bool {
	return anchor == AnchorTopCenter || anchor == AnchorBottomCenter
}

// OverlayOptions controls stamp geometry. The rectangle width is derived
// from the rendered label width with MinRectWidth as a floor so multi-digit
// labels are never clipped; placement is relative to the page's visible
// area (crop box when present, media box otherwise).
type OverlayOptions struct {
	Anchor       string  `json:"anchor"`
	FontSize     int     `json:"font_size"`
	Margin       int     `json:"margin"`
	MinRectWidth float64 `json:"min_rect_width"`
}

// Backend is the opaque document capability the assembly engine runs
// against: open a file as pages, count them, concatenate files, and overlay
// stamps onto pages of an existing output file.
type Backend interface {
	Variant() Variant
	Capabilities() Capabilities

	// PageCount returns the number of pages in the document at path.
	PageCount(path string) (int, error)

	// Merge concatenates the input documents, in order, into outFile.
	Merge(inFiles []string, outFile string) error

	// Overlay applies stamps (keyed by 1-based page number) to the document
	// at path, in place.
	Overlay(path string, stamps map[int]Stamp, opts OverlayOptions) error
}

var (
	// ErrBackendUnavailable means no document backend could be constructed;
	// no assembly is possible.
	ErrBackendUnavailable = errors.New("document backend unavailable")
	// ErrOverlayUnsupported means the selected backend cannot stamp pages;
	// callers degrade to plain concatenation.
	ErrOverlayUnsupported = errors.New("overlay not supported by this backend")
)

// SelectBackend picks the best available backend variant. The full pdfcpu
// backend is preferred; when overlays are disabled by configuration the
// merge-only variant is returned so the engine's degradation path is
// exercised uniformly.
func SelectBackend(overlayEnabled bool) Backend {
	full := NewPDFCPUBackend()
	if !overlayEnabled {
		return &mergeOnlyBackend{inner: full}
	}
	return full
}

// mergeOnlyBackend wraps a full backend with overlays switched off.
type mergeOnlyBackend struct {
	inner Backend
}

func (b *mergeOnlyBackend) Variant() Variant { return VariantMergeOnly }

func (b *mergeOnlyBackend) Capabilities() Capabilities {
	return Capabilities{Merge: true, Overlay: false}
}

func (b *mergeOnlyBackend) PageCount(path string) (int, error) {
	return b.inner.PageCount(path)
}

func (b *mergeOnlyBackend) Merge(inFiles []string, outFile string) error {
	return b.inner.Merge(inFiles, outFile)
}

func (b *mergeOnlyBackend) Overlay(string, map[int]Stamp, OverlayOptions) error {
	return ErrOverlayUnsupported
}

// UnavailableBackend is the no-capability variant. It exists so callers can
// hold a non-nil Backend even when construction failed and still surface a
// consistent error per operation.
type UnavailableBackend struct {
	Reason error
}

func (b *UnavailableBackend) Variant() Variant           { return VariantUnavailable }
func (b *UnavailableBackend) Capabilities() Capabilities { return Capabilities{} }

func (b *UnavailableBackend) err() error {
	if b.Reason != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, b.Reason)
	}
	return ErrBackendUnavailable
}

func (b *UnavailableBackend) PageCount(string) (int, error)                       { return 0, b.err() }
func (b *UnavailableBackend) Merge([]string, string) error                        { return b.err() }
func (b *UnavailableBackend) Overlay(string, map[int]Stamp, OverlayOptions) error { return b.err() }
