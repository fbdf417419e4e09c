package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ledongthuc/pdf"
)

// ErrEmptyPDF is returned when the browser printed a document with no pages
var ErrEmptyPDF = errors.New("rendered PDF has no pages")

// PDFRenderer prints markup to PDF with a headless Chromium. The browser is
// launched on first use and shared by all renders.
type PDFRenderer struct {
	browserBin string

	mu      sync.Mutex
	browser *rod.Browser
}

// NewPDFRenderer creates a renderer; bin may be empty to let rod find or
// download a browser.
func NewPDFRenderer(bin string) *PDFRenderer {
	return &PDFRenderer{browserBin: bin}
}

func (r *PDFRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	if r.browserBin != "" {
		l = l.Bin(r.browserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	r.browser = browser
	return browser, nil
}

// Render prints markup as an A4 PDF
func (r *PDFRenderer) Render(ctx context.Context, markup string) (*Artifact, error) {
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(markup); err != nil {
		return nil, fmt.Errorf("failed to load markup: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load markup: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	pages, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:        data,
		ContentType: "application/pdf",
		Extension:   ".pdf",
		Pages:       pages,
	}, nil
}

// Close shuts the browser down if it was started
func (r *PDFRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// PageCount parses a PDF and returns its number of pages
func PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return 0, ErrEmptyPDF
	}
	return pages, nil
}
