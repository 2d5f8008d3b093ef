package loader

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
)

// decodedImages maps a resolved image path to its decoded, fitted image.
type decodedImages map[string]image.Image

// decodeImages decodes every distinct path once on the loader's worker pool. Textures that share a file share the
// decoded image but still get their own texels. The first decode error is returned.
func (l *loader) decodeImages(paths []string) (decodedImages, error) {
	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		images   = make(decodedImages, len(unique))
	)
	for id, path := range unique {
		wg.Add(1)
		l.decodePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()

				img, err := scene.DecodeImage(path)
				if err == nil {
					img = scene.FitImage(img, l.maxTextureEdge)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				images[path] = img
				return nil, nil
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("failed to decode textures: %w", firstErr)
	}
	return images, nil
}
