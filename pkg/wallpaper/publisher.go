// Package wallpaper downloads published artwork and sets it as the desktop wallpaper.
package wallpaper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
)

// MaxImageSize caps the size of a downloaded artwork image.
const MaxImageSize = 50 << 20

// KeepImages is how many fitted images stay in the cache directory.
const KeepImages = 5

// SupportedContentTypes are the image formats the publisher can decode.
var SupportedContentTypes = mapset.NewSet(
	"image/jpeg",
	"image/png",
	"image/webp",
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Publisher sets each published artwork as the desktop wallpaper.
type Publisher struct {
	os         OS
	httpClient *http.Client
	cacheDir   string
	processor  *smartImageProcessor
}

// NewPublisher creates a Publisher that keeps fitted images in cacheDir.
func NewPublisher(httpClient *http.Client, cacheDir string) *Publisher {
	return newPublisher(getOS(), httpClient, cacheDir)
}

func newPublisher(o OS, httpClient *http.Client, cacheDir string) *Publisher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Publisher{
		os:         o,
		httpClient: httpClient,
		cacheDir:   cacheDir,
		processor:  newSmartImageProcessor(o),
	}
}

// Publish downloads the artwork image, fits it to the screen and sets it as the wallpaper.
func (p *Publisher) Publish(ctx context.Context, art artsource.Artwork) error {
	data, err := p.download(ctx, art.ImageURI)
	if err != nil {
		return err
	}

	img, err := p.processor.DecodeImage(ctx, bytes.NewReader(data))
	if err != nil {
		return err
	}

	fitted, err := p.processor.FitImage(ctx, img)
	if err != nil {
		log.Printf("Using artwork %s unfitted: %v", art.Token, err)
		fitted = img
	}

	encoded, err := p.processor.EncodeImage(ctx, fitted)
	if err != nil {
		return err
	}

	path, err := p.save(art.Token, encoded)
	if err != nil {
		return err
	}

	if err := p.os.setWallpaper(path); err != nil {
		return fmt.Errorf("setting wallpaper: %w", err)
	}
	log.Printf("Wallpaper set to %s", path)

	p.prune(path)
	return nil
}

func (p *Publisher) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxImageSize)
	}

	contentType := contentTypeOf(resp.Header.Get("Content-Type"), data)
	if !SupportedContentTypes.Contains(contentType) {
		return nil, fmt.Errorf("unsupported image type %q", contentType)
	}
	return data, nil
}

// contentTypeOf returns the media type from the header, sniffing the body when the header is missing or generic.
func contentTypeOf(header string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	return strings.ToLower(mediaType)
}

func (p *Publisher) save(token string, data []byte) (string, error) {
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	name := unsafeFileChars.ReplaceAllString(token, "_")
	if name == "" {
		name = "artwork"
	}
	path := filepath.Join(p.cacheDir, name+".jpg")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing image: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// prune removes all but the KeepImages newest images. current is never removed.
func (p *Publisher) prune(current string) {
	entries, err := os.ReadDir(p.cacheDir)
	if err != nil {
		log.Printf("Failed to list cache directory: %v", err)
		return
	}

	type cached struct {
		path    string
		modTime int64
	}
	var files []cached
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jpg" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, cached{filepath.Join(p.cacheDir, e.Name()), info.ModTime().UnixNano()})
	}
	if len(files) <= KeepImages {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })
	for _, f := range files[KeepImages:] {
		if abs, _ := filepath.Abs(f.path); abs == current {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			log.Printf("Failed to remove cached image %s: %v", f.path, err)
		}
	}
}
