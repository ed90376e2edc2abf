package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"musicdl/models"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DownloadFile fetches an unencrypted payload into filePath through a
// ".part" sibling renamed on success. 403 and 404 answer with
// ErrProtectedSource: the source is gated, not broken.
// config.Timeout bounds the wait for headers and each pause in the
// body, not the whole transfer.
func DownloadFile(
	ctx context.Context,
	client models.HTTPClient,
	fileURL string,
	filePath string,
	config *models.DownloadConfig,
) (int64, error) {
	config = models.GetDownloadConfig(config)
	zap.S().Debugf("invoking direct downloader: %s", fileURL)

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	idle := time.AfterFunc(config.Timeout, cancel)
	defer idle.Stop()

	resp, err := Request(reqCtx, client, http.MethodGet, fileURL, nil, config.Headers)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	idle.Reset(config.Timeout)

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusNotFound:
		zap.S().Debugf("direct source answered %d", resp.StatusCode)
		return 0, ErrProtectedSource
	case !IsSuccessStatus(resp.StatusCode):
		return 0, &TransportError{URL: fileURL, StatusCode: resp.StatusCode}
	}

	partPath := filePath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	total := resp.ContentLength
	bar := newProgressBar(total, "downloading", true, config.ShowProgress)
	counter := &progressWriter{total: total, config: config, idle: idle, timeout: config.Timeout}

	// use a fixed-size buffer for
	// copying to avoid large allocations (32KB)
	buf := make([]byte, 32*1024)
	written, err := io.CopyBuffer(io.MultiWriter(file, bar, counter), resp.Body, buf)
	closeErr := file.Close()
	bar.Finish()
	if err != nil {
		os.Remove(partPath)
		return 0, &TransportError{URL: fileURL, Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if closeErr != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err := os.Rename(partPath, filePath); err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to rename file: %w", err)
	}
	zap.S().Debugf("downloaded %s", humanize.Bytes(uint64(written)))
	return written, nil
}

// AssembleSegments writes init || seg[0] || ... || seg[n-1] to dst,
// fetching one segment at a time in manifest order. the first failed
// segment aborts the whole assembly.
func AssembleSegments(
	ctx context.Context,
	client models.HTTPClient,
	initURI string,
	segmentURIs []string,
	dst io.Writer,
	config *models.DownloadConfig,
) (int64, error) {
	config = models.GetDownloadConfig(config)
	zap.S().Debugf("invoking segments downloader: %d segments + init", len(segmentURIs))

	total := int64(len(segmentURIs))
	bar := newProgressBar(total, "downloading segments", false, config.ShowProgress)
	defer bar.Finish()

	written, err := fetchSegment(ctx, client, -1, initURI, dst, config)
	if err != nil {
		return 0, err
	}
	for idx, segmentURI := range segmentURIs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := fetchSegment(ctx, client, idx, segmentURI, dst, config)
		if err != nil {
			return written, err
		}
		written += n
		bar.Add(1)
		config.ReportProgress(int64(idx+1), total)
	}
	zap.S().Debugf("assembled %s", humanize.Bytes(uint64(written)))
	return written, nil
}

func fetchSegment(
	ctx context.Context,
	client models.HTTPClient,
	idx int,
	segmentURI string,
	dst io.Writer,
	config *models.DownloadConfig,
) (int64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	resp, err := Request(reqCtx, client, http.MethodGet, segmentURI, nil, config.Headers)
	if err != nil {
		return 0, &SegmentFetchError{Index: idx, URI: segmentURI, Err: err}
	}
	defer resp.Body.Close()

	if !IsSuccessStatus(resp.StatusCode) {
		return 0, &SegmentFetchError{Index: idx, URI: segmentURI, StatusCode: resp.StatusCode}
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, &SegmentFetchError{Index: idx, URI: segmentURI, Err: err}
	}
	return n, nil
}

type progressWriter struct {
	done    int64
	total   int64
	config  *models.DownloadConfig
	idle    *time.Timer // re-armed on every write
	timeout time.Duration
}

func (w *progressWriter) Write(p []byte) (int, error) {
	if w.idle != nil {
		w.idle.Reset(w.timeout)
	}
	w.done += int64(len(p))
	w.config.ReportProgress(w.done, w.total)
	return len(p), nil
}
