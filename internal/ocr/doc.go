// Package ocr reads watermark text back out of an image with Tesseract.
//
// It is used to confirm that an applied watermark is legible: the
// watermark's text box is cropped, preprocessed and passed to Tesseract
// (via gosseract/v2), and the recognized text is compared with what was
// drawn.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// The default language is English ("eng"); set WATERMARK_OCR_LANGUAGE for
// others.
//
// # Functions
//
//   - VerifyText: OCR one region and compare it to the expected text
//   - ExtractText: OCR a whole in-memory image
//   - Matches: case- and whitespace-insensitive containment check
package ocr
