package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describe lo que el resolver encontró para un path de petición.
type FileInfo struct {
	Path string // docroot + "/" + path, sin sanear
	Size int64  // válido sólo si OK
	OK   bool   // existe y es archivo regular
	Err  error  // causa cuando Lstat falló; sólo para logs
}

// Resolver traduce el path de la petición a hechos del filesystem.
type Resolver interface {
	Resolve(urlPath string) FileInfo
}

// Resolve une docroot y urlPath con un único "/" sin interpretar "..",
// percent-encoding ni paths vacíos. Usa Lstat: symlinks y directorios
// cuentan como inexistentes. Cualquier error de Lstat también.
func Resolve(docroot, urlPath string) FileInfo {
	info := FileInfo{Path: buildPath(docroot, urlPath)}
	st, err := os.Lstat(info.Path)
	if err != nil {
		info.Err = err
		return info
	}
	if !st.Mode().IsRegular() {
		return info
	}
	info.OK = true
	info.Size = st.Size()
	return info
}

func buildPath(docroot, urlPath string) string {
	return docroot + "/" + urlPath
}

// Root resuelve contra un docroot fijo, sin sanear el path.
type Root string

func (r Root) Resolve(urlPath string) FileInfo { return Resolve(string(r), urlPath) }

// Confined envuelve Resolve rechazando paths que escapan del docroot, ya
// sea con segmentos ".." o a través de un directorio intermedio que es un
// symlink hacia afuera. Un path rechazado se reporta como inexistente (404),
// igual que un archivo que no está. El último componente lo cubre Lstat: un
// symlink nunca es archivo regular.
type Confined string

func (c Confined) Resolve(urlPath string) FileInfo {
	clean, ok := sanitize(urlPath)
	if !ok {
		return FileInfo{Path: buildPath(string(c), urlPath), Err: os.ErrPermission}
	}
	if err := within(string(c), clean); err != nil {
		return FileInfo{Path: buildPath(string(c), clean), Err: err}
	}
	return Resolve(string(c), clean)
}

// within verifica que el directorio que contiene clean, con los symlinks ya
// evaluados, siga debajo del docroot evaluado.
func within(docroot, clean string) error {
	root, err := filepath.EvalSymlinks(docroot)
	if err != nil {
		return err
	}
	dir, err := filepath.EvalSymlinks(filepath.Join(docroot, filepath.Dir(clean)))
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", os.ErrPermission, dir, root)
	}
	return nil
}

// sanitize devuelve la forma limpia del path, siempre con "/" inicial.
// Rechaza NUL, backslashes y cualquier segmento "..", aunque en la forma
// limpia quede dentro del docroot.
func sanitize(urlPath string) (string, bool) {
	if strings.ContainsRune(urlPath, 0) || strings.ContainsRune(urlPath, '\\') {
		return "", false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return filepath.Clean("/" + urlPath), true
}
