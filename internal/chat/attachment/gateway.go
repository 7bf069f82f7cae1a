// Package attachment stores uploaded message files and streams them back to
// the two participants of the owning message.
package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"taskchat/internal/chat/models"
	"taskchat/internal/common"
	"taskchat/internal/config"
)

// PathPrefix is prepended to stored names in message records.
const PathPrefix = "uploads/messages/"

const (
	sniffLen          = 3072
	maxExtLen         = 16
	imageCacheControl = "private, max-age=300"
)

// Finder locates the message that authorizes access to a stored file.
type Finder interface {
	FindAttachment(ctx context.Context, path, requesterID string) (*models.Message, error)
}

// Download is an authorized attachment ready to be streamed. The caller owns
// Content and must close it.
type Download struct {
	Content      io.ReadCloser
	ContentType  string
	Disposition  string
	CacheControl string
	Size         int64
}

type Gateway struct {
	storage  Storage
	finder   Finder
	tokens   common.TokenVerifier
	maxBytes int64
	now      func() time.Time
}

func NewGateway(storage Storage, finder Finder, tokens common.TokenVerifier, cfg *config.Config) *Gateway {
	return &Gateway{
		storage:  storage,
		finder:   finder,
		tokens:   tokens,
		maxBytes: cfg.MaxUploadBytes(),
		now:      time.Now,
	}
}

// MaxBytes is the largest accepted upload.
func (g *Gateway) MaxBytes() int64 {
	return g.maxBytes
}

// Store saves an upload under a randomized name of the form
// <field>-<unixmillis>-<random><ext> and returns the file body to attach to
// the message. A missing or generic declared MIME type is replaced by the
// sniffed one.
func (g *Gateway) Store(ctx context.Context, field, originalName, declaredMIME string, content io.Reader) (*models.FileBody, error) {
	originalName = filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if originalName == "" || originalName == "." || originalName == "/" {
		return nil, common.NewValidationError("File name is required")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, common.NewServerError("Failed to read upload", err)
	}
	if n == 0 {
		return nil, common.NewValidationError("Uploaded file is empty")
	}
	head = head[:n]

	mimeType := strings.TrimSpace(declaredMIME)
	sniffed := mimetype.Detect(head)
	if common.IsGenericMIME(mimeType) {
		mimeType = sniffed.String()
	}

	ext := storedExt(originalName, sniffed.Extension())
	if field == "" {
		field = "file"
	}
	stored := fmt.Sprintf("%s-%d-%d%s", field, g.now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	// One extra byte tells an exactly-full upload from an oversized one.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), content), g.maxBytes+1)
	size, err := g.storage.Save(ctx, stored, body)
	if err != nil {
		return nil, common.NewServerError("Failed to store upload", err)
	}
	if size > g.maxBytes {
		g.remove(ctx, stored)
		return nil, common.NewValidationError(fmt.Sprintf("File exceeds the %d MB limit", g.maxBytes>>20))
	}

	return &models.FileBody{
		Path:         PathPrefix + stored,
		OriginalName: originalName,
		Size:         size,
		MIMEType:     mimeType,
	}, nil
}

// Discard removes a stored upload whose message could not be created.
func (g *Gateway) Discard(ctx context.Context, file *models.FileBody) {
	if file == nil {
		return
	}
	g.remove(ctx, file.StoredName())
}

func (g *Gateway) remove(ctx context.Context, name string) {
	if err := g.storage.Remove(ctx, name); err != nil {
		log.Printf("Failed to remove attachment %s: %v", name, err)
	}
}

// Download authorizes and opens filename with a save-as disposition.
func (g *Gateway) Download(ctx context.Context, filename, token string) (*Download, error) {
	return g.open(ctx, filename, token, false)
}

// View is Download, except images are served inline with a short cache
// lifetime.
func (g *Gateway) View(ctx context.Context, filename, token string) (*Download, error) {
	return g.open(ctx, filename, token, true)
}

func (g *Gateway) open(ctx context.Context, filename, token string, inline bool) (*Download, error) {
	if !safeName(filename) {
		return nil, common.NewValidationError("Invalid filename")
	}

	if token == "" {
		return nil, common.NewUnauthorizedError("Authorization required")
	}
	claims, err := g.tokens.ValidToken(token)
	if err != nil {
		return nil, common.NewUnauthorizedError("Invalid or expired token")
	}

	msg, err := g.finder.FindAttachment(ctx, PathPrefix+filename, claims.UserID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.NewForbiddenError("You do not have access to this file")
		}
		return nil, common.NewServerError("Failed to authorize file access", err)
	}
	file, ok := msg.File()
	if !ok {
		return nil, common.NewForbiddenError("You do not have access to this file")
	}

	content, size, err := g.storage.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, common.ErrFileNotFound) {
			return nil, common.NewNotFoundError("File not found")
		}
		return nil, common.NewServerError("Failed to open file", err)
	}

	d := &Download{
		Content:     content,
		ContentType: file.MIMEType,
		Disposition: disposition("attachment", file.OriginalName),
		Size:        size,
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	if inline && inlineImage(file.MIMEType) {
		d.Disposition = disposition("inline", file.OriginalName)
		d.CacheControl = imageCacheControl
	}
	return d, nil
}

// storedExt keeps the original extension only when it is short and
// alphanumeric, so stored names stay usable as URL path segments.
func storedExt(originalName, sniffedExt string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return sniffedExt
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return sniffedExt
		}
	}
	return ext
}

// inlineImage reports whether an image type may render inline. SVG can carry
// script, so it is always served as an attachment.
func inlineImage(mimeType string) bool {
	if !common.IsImageMIME(mimeType) {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	return err == nil && mediaType != "image/svg+xml"
}

func safeName(name string) bool {
	return name != "" &&
		!strings.Contains(name, "/") &&
		!strings.Contains(name, "\\") &&
		!strings.Contains(name, "..")
}

// disposition encodes name per RFC 5987 so non-ASCII names survive.
func disposition(kind, name string) string {
	return kind + "; filename*=UTF-8''" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
