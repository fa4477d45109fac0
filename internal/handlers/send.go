package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"

	"littlehttp/internal/http1"
)

// BlockSize es el tamaño de cada bloque copiado del archivo al stream.
const BlockSize = 1024

// Opener abre el archivo a enviar. nil usa os.Open.
type Opener func(path string) (io.ReadCloser, error)

func (o Opener) open(path string) (io.ReadCloser, error) {
	if o == nil {
		return os.Open(path)
	}
	return o(path)
}

// SendFile copia exactamente info.Size bytes de info.Path a w en bloques de
// BlockSize. Una escritura corta, un error de lectura o un archivo que se
// achicó después del Lstat se reportan como http1.ErrIOFailure. Devuelve los
// bytes escritos, que pueden ser menos que Size si hubo error.
func SendFile(w io.Writer, info FileInfo, open Opener) (int64, error) {
	f, err := open.open(info.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open %s: %w", http1.ErrIOFailure, info.Path, err)
	}
	defer f.Close()

	var (
		buf     [BlockSize]byte
		written int64
		src     = io.LimitReader(f, info.Size)
	)
	for written < info.Size {
		n, rerr := src.Read(buf[:])
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr == nil && m < n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, fmt.Errorf("%w: failed to write to socket: %w", http1.ErrIOFailure, werr)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return written, fmt.Errorf("%w: failed to read %s: %w", http1.ErrIOFailure, info.Path, rerr)
		}
	}
	if written < info.Size {
		return written, fmt.Errorf("%w: %s: short file, sent %d of %d bytes", http1.ErrIOFailure, info.Path, written, info.Size)
	}
	return written, nil
}
