package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"gioui.org/x/explorer"
	"github.com/google/uuid"

	"github.com/OpenTraceLab/ecglearn/internal/ui/canvas"
	"github.com/OpenTraceLab/ecglearn/internal/watch"
)

// uploadTimeout bounds one blob store upload
const uploadTimeout = 30 * time.Second

// queue hands a decoded source to the UI goroutine
func (a *App) queue(src *canvas.Source) {
	a.loaded <- src
	a.invalidate()
}

func (a *App) openFilePicker() {
	go func() {
		file, err := a.explorer.ChooseFile("png", "jpg", "jpeg", "gif", "bmp", "webp")
		if err != nil {
			if !errors.Is(err, explorer.ErrUserDecline) {
				a.Logf("[ERROR] File picker failed: %v", err)
			}
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			a.Logf("[ERROR] Failed to read image: %v", err)
			return
		}
		name := "image"
		if f, ok := file.(interface{ Name() string }); ok {
			name = path.Base(f.Name())
		}
		src, err := canvas.Decode(name, data)
		if err != nil {
			a.Logf("[ERROR] %v", err)
			return
		}
		a.queue(src)
	}()
}

// download writes the original bytes of the current image to a file the
// user picks.
func (a *App) download() {
	src := a.source
	if src == nil {
		a.Logf("[WARN] Nothing to download")
		return
	}
	go func() {
		out, err := a.explorer.CreateFile(src.Name)
		if err != nil {
			if !errors.Is(err, explorer.ErrUserDecline) {
				a.Logf("[ERROR] Save dialog failed: %v", err)
			}
			return
		}
		n, err := io.Copy(out, bytes.NewReader(src.Data))
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			a.Logf("[ERROR] Download of %s failed: %v", src.Name, err)
			return
		}
		a.Logf("[INFO] Downloaded %s (%d bytes)", src.Name, n)
	}()
}

// upload stores the current image in the blob store under a fresh name
func (a *App) upload() {
	src := a.source
	if src == nil || a.opts.Blobs == nil {
		return
	}
	name := path.Join(a.opts.UploadPrefix, uuid.NewString()+path.Ext(src.Name))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		url, err := a.opts.Blobs.Upload(ctx, bytes.NewReader(src.Data), name)
		if err != nil {
			a.Logf("[ERROR] Upload failed: %v", err)
			return
		}
		a.Logf("[INFO] Uploaded %s to %s", src.Name, url)
	}()
}

// watch reloads changed sources until w is closed
func (a *App) watch(w *watch.Watcher) {
	for {
		select {
		case p, ok := <-w.Events:
			if !ok {
				return
			}
			src, err := canvas.Load(p)
			if err != nil {
				// Editors often leave a half-written file behind; the next event retries
				a.Logf("[WARN] Reload of %s failed: %v", p, err)
				continue
			}
			a.queue(src)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.Logf("[ERROR] Watcher: %v", err)
		}
	}
}
