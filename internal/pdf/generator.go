package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RenderArtifacts 在同一个无头浏览器会话中渲染 HTML，
// 返回 A4 PDF 字节与 JPEG 预览截图。HTML 由服务端自己生成，无需访问前端。
func RenderArtifacts(htmlContent string, previewQuality int) (pdfBytes []byte, previewBytes []byte, err error) {
	page, cleanup, err := openPage(htmlContent)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	pdfBytes, err = exportPDF(page)
	if err != nil {
		return nil, nil, err
	}

	previewBytes, err = captureScreenshot(page, previewQuality)
	if err != nil {
		return nil, nil, err
	}

	return pdfBytes, previewBytes, nil
}

// GeneratePDFFromHTML 渲染 HTML 并只返回 PDF 字节。
func GeneratePDFFromHTML(htmlContent string) ([]byte, error) {
	page, cleanup, err := openPage(htmlContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return exportPDF(page)
}

// CaptureJPEGFromHTML 渲染 HTML 并返回 JPEG 截图（模板缩略图用）。
func CaptureJPEGFromHTML(htmlContent string, quality int) ([]byte, error) {
	page, cleanup, err := openPage(htmlContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return captureScreenshot(page, quality)
}

func openPage(htmlContent string) (_ *rod.Page, cleanup func(), err error) {
	cleanup = func() {}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}
	cleanup = launch.Cleanup

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}
	prevCleanup := cleanup
	cleanup = func() {
		_ = browser.Close()
		prevCleanup()
	}

	page, err := browser.Timeout(30 * time.Second).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, cleanup, fmt.Errorf("create page: %w", err)
	}
	browserCleanup := cleanup
	cleanup = func() {
		_ = page.Close()
		browserCleanup()
	}

	page = page.Timeout(30 * time.Second)
	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, cleanup, fmt.Errorf("set document content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, cleanup, fmt.Errorf("wait load: %w", err)
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return nil, cleanup, fmt.Errorf("set emulated media to print: %w", err)
	}

	return page, cleanup, nil
}

func exportPDF(page *rod.Page) ([]byte, error) {
	params := &proto.PagePrintToPDF{
		PrintBackground:   true,
		PaperWidth:        float64Ptr(8.27),
		PaperHeight:       float64Ptr(11.69),
		MarginTop:         float64Ptr(0),
		MarginBottom:      float64Ptr(0),
		MarginLeft:        float64Ptr(0),
		MarginRight:       float64Ptr(0),
		PreferCSSPageSize: true,
	}
	reader, err := page.PDF(params)
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

func captureScreenshot(page *rod.Page, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	req := &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: intPtr(quality),
	}
	data, err := page.Screenshot(true, req)
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}
	return data, nil
}

func float64Ptr(value float64) *float64 {
	return &value
}

func intPtr(value int) *int {
	return &value
}
