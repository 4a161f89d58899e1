package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log"
	"os"
	"strings"

	"github.com/decker502/scrollscene/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// MaxTextureSize is the largest edge (in pixels) a texture keeps after decoding.
// Larger textures are downscaled while preserving their aspect ratio.
const MaxTextureSize = 2048

// preloadWorkers limits how many textures are decoded in parallel.
const preloadWorkers = 4

// textureResult carries one decoded texture from a preload worker
// back to the frame loop.
type textureResult struct {
	path    string
	request uint64
	img     image.Image
	err     error
}

// ResourceManager is responsible for centralized management of scene textures.
//
// Textures can be loaded synchronously with LoadImage, or asynchronously with
// PreloadTextures. Asynchronous loading decodes files on worker goroutines;
// the decoded images are only turned into ebiten images on the frame loop,
// inside PollLoaded.
//
// Thread Safety Note:
// The caches are plain maps and must only be touched from the frame loop.
// Worker goroutines never access them; they hand their results over a channel.
type ResourceManager struct {
	imageCache map[string]*ebiten.Image // path -> Image
	failed     map[string]error         // path -> load error
	pending    map[string]uint64        // path -> id of the preload in flight
	results    chan textureResult
	lastID     uint64
}

// NewResourceManager creates and initializes a new ResourceManager instance.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{
		imageCache: make(map[string]*ebiten.Image),
		failed:     make(map[string]error),
		pending:    make(map[string]uint64),
		results:    make(chan textureResult, 64),
	}
}

// LoadImage loads an image synchronously and caches it.
//
// Paths starting with "assets/" or "data/" are read from the embedded
// filesystem when it is initialized; all other paths are read from disk.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	if cachedImage, exists := rm.imageCache[path]; exists {
		return cachedImage, nil
	}

	img, err := decodeTextureFile(path)
	if err != nil {
		return nil, err
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[path] = ebitenImg
	return ebitenImg, nil
}

// GetImage retrieves a previously loaded image from the cache.
// Returns nil if the image has not finished loading.
func (rm *ResourceManager) GetImage(path string) *ebiten.Image {
	return rm.imageCache[path]
}

// PreloadTextures starts decoding the given textures in the background.
//
// Already cached or in-flight paths are skipped. Results become visible
// through GetImage after a later PollLoaded call. Cancelling ctx stops
// workers that have not started decoding yet; those paths are not marked
// as failed, they simply stop being pending and can be requested again.
func (rm *ResourceManager) PreloadTextures(ctx context.Context, paths []string) {
	rm.lastID++
	request := rm.lastID

	queue := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "" || rm.IsPending(path) {
			continue
		}
		if _, cached := rm.imageCache[path]; cached {
			continue
		}
		rm.pending[path] = request
		delete(rm.failed, path)
		queue = append(queue, path)
	}
	if len(queue) == 0 {
		return
	}

	log.Printf("[ResourceManager] Preloading %d textures", len(queue))

	results := rm.results
	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(preloadWorkers)
		for _, path := range queue {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results <- textureResult{path: path, request: request, err: err}
					return nil
				}
				img, err := decodeTextureFile(path)
				results <- textureResult{path: path, request: request, img: img, err: err}
				// 单个贴图失败不影响其他贴图
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// PollLoaded moves finished preloads into the cache.
// Must be called from the frame loop. Returns how many textures became available.
func (rm *ResourceManager) PollLoaded() int {
	loaded := 0
	for {
		select {
		case res := <-rm.results:
			if rm.pending[res.path] == res.request {
				delete(rm.pending, res.path)
			}
			if isCancellation(res.err) {
				// 请求方已放弃；不算失败，之后可以重新请求
				continue
			}
			if res.err != nil {
				rm.failed[res.path] = res.err
				log.Printf("[ResourceManager] Warning: texture %s failed to load: %v", res.path, res.err)
				continue
			}
			rm.imageCache[res.path] = ebiten.NewImageFromImage(res.img)
			loaded++
		default:
			return loaded
		}
	}
}

// IsPending reports whether a preload for path is still in flight.
func (rm *ResourceManager) IsPending(path string) bool {
	_, ok := rm.pending[path]
	return ok
}

// PendingCount returns the number of preloads still in flight.
func (rm *ResourceManager) PendingCount() int {
	return len(rm.pending)
}

// LoadError returns the error recorded for a failed preload, if any.
func (rm *ResourceManager) LoadError(path string) error {
	return rm.failed[path]
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// decodeTextureFile opens and decodes a texture file.
func decodeTextureFile(path string) (image.Image, error) {
	r, err := openResource(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer r.Close()

	img, err := DecodeTexture(r, MaxTextureSize)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return img, nil
}

// DecodeTexture decodes a PNG or JPEG image and downscales it so that
// neither edge exceeds maxSize. maxSize <= 0 disables scaling.
func DecodeTexture(r io.Reader, maxSize int) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FitTexture(img, maxSize), nil
}

// FitTexture downscales img so that its longest edge is at most maxSize.
func FitTexture(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	scale := float64(maxSize) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// openResource opens an embedded resource when possible, falling back to disk.
func openResource(path string) (io.ReadCloser, error) {
	if embedded.IsInitialized() && (strings.HasPrefix(path, "assets/") || strings.HasPrefix(path, "data/")) {
		if f, err := embedded.Open(path); err == nil {
			return f, nil
		}
	}
	return os.Open(path)
}

// ReadResource reads a whole resource file (embedded first, then disk).
func ReadResource(path string) ([]byte, error) {
	r, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
