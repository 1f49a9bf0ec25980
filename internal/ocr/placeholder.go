package ocr

import "fmt"

// DemoMarker appears in every placeholder text.
const DemoMarker = "DEMONSTRATION MODE"

const (
	msgFileNotFound     = "File not found"
	msgTesseractMissing = "OCR processing requires Tesseract to be installed and configured properly."
	msgPopplerMissing   = "PDF processing requires Poppler utilities to be installed. Please install Poppler and restart the application."
	msgInvalidPDF       = "Invalid or corrupted PDF file. Please try with a different PDF."
	msgImageFailed      = "Image processing failed"
	msgPDFFailed        = "PDF processing failed"
	msgOCRFailed        = "OCR processing failed"
	msgPageFailed       = "text recognition failed"
)

func placeholderImageText(name string) string {
	return fmt.Sprintf(`%s - TESSERACT NOT INSTALLED

This is a mock OCR result for the image file: %s

In a real deployment with Tesseract OCR installed, this would contain
the actual text extracted from your image.

To enable real OCR functionality:
1. Install Tesseract OCR on your system
2. Restart the application

The OCR Web Application supports:
- High-quality text extraction
- Multiple languages
- Image preprocessing for better accuracy
- Secure file handling`, DemoMarker, name)
}

func placeholderPDFText(name string) string {
	return fmt.Sprintf(`--- Page 1 ---
%s - TESSERACT NOT INSTALLED

This is a mock OCR result for the PDF file: %s

In a real deployment with Tesseract OCR installed, this would contain
the actual text extracted from your PDF document.

To enable real OCR functionality:
1. Install Tesseract OCR on your system
2. Restart the application

--- Page 2 ---
Additional pages would appear here with their extracted text content.

The OCR Web Application supports:
- Multiple image formats (JPEG, PNG)
- PDF documents (up to 10 pages)
- Multi-language text recognition
- High accuracy text extraction`, DemoMarker, name)
}
