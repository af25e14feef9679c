package document

// FitLogo scales an image of originalWidth x originalHeight into the
// maxWidth x maxHeight bound without distortion. The clamp order matters:
// width first, then a height re-check on the result. Clamping both axes
// independently would under-fit wide logos; this order guarantees both
// bounds hold while the aspect ratio is preserved.
//
// Non-positive inputs are degenerate and yield (0, 0).
func FitLogo(originalWidth, originalHeight, maxWidth, maxHeight float64) (width, height float64) {
	if originalWidth <= 0 || originalHeight <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0
	}

	aspectRatio := originalWidth / originalHeight
	width = originalWidth
	height = originalHeight

	if width > maxWidth {
		width = maxWidth
		height = width / aspectRatio
	}
	if height > maxHeight {
		height = maxHeight
		width = height * aspectRatio
	}
	return width, height
}
