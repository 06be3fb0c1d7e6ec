package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// invoiceExtractPrompt is the shared prompt used by all model providers for
// pulling line items out of an invoice.
const invoiceExtractPrompt = `You are analyzing a handwritten or printed invoice. Carefully read every line of the document and extract each purchasable line item:

1. **Item name**: The name of the food item or product as written on the invoice.
2. **Quantity**: The numeric quantity ordered. Use 0 if unreadable or absent.
3. **Unit**: The unit label if one is written (e.g., "pcs", "kg", "cup", "btl"). Use an empty string if absent.
4. **Rate**: The numeric unit price. Use 0 if unreadable or absent.
5. **Section headings**: If the invoice groups items under written section titles (e.g., "Dosa Items", "Beverages"), emit the title as an entry with "isHeading": true, placed before the items it covers.

Return ONLY valid JSON in this exact format:
{
  "items": [
    { "name": "Plain Dosa", "quantity": 2, "unit": "pcs", "rate": 80, "isHeading": false }
  ]
}

Important:
- Preserve the top-to-bottom order of the document
- quantity and rate must be numbers, not strings
- Omit ruled-off totals, taxes, and signature lines; extract only line items and section headings
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// pdfToImage renders the first page of a PDF as a PNG image. Invoices that
// span multiple pages are uploaded page by page.
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToPNG converts any supported image format to PNG. HEIC/HEIF (common
// on iPhones) is handled separately since the standard image package cannot
// decode it.
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks the ftyp box for a HEIC/HEIF brand.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareDocument normalizes the MIME type and converts the document to PNG.
// PDFs are rendered, non-PNG images are re-encoded, PNGs pass through. The
// returned data is always PNG.
func prepareDocument(documentData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "application/pdf" {
		pngData, err := pdfToImage(documentData)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, nil
	}

	if mimeType != "image/png" || isHEICFormat(documentData) {
		pngData, err := imageToPNG(documentData, mimeType)
		if err != nil {
			return nil, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, nil
	}

	return documentData, nil
}
