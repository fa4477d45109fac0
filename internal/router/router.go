package router

import (
	"strconv"

	"littlehttp/internal/handlers"
	"littlehttp/internal/http1"
	"littlehttp/internal/resp"
)

// Dispatch decide la respuesta para req. Sólo resuelve el path para GET y
// HEAD; el resto de métodos no toca el filesystem.
//
//	GET/HEAD + archivo regular -> 200 (HEAD sin cuerpo)
//	GET/HEAD + otra cosa       -> 404 (HEAD sin cuerpo)
//	POST                       -> 405
//	cualquier otro método      -> 501
func Dispatch(req *http1.Request, r handlers.Resolver) resp.Result {
	switch req.Method {
	case "GET", "HEAD":
		head := req.Method == "HEAD"
		info := r.Resolve(req.Path)
		if !info.OK {
			return resp.NotFound(notFoundBody, head)
		}
		return resp.FileOK(info, head)
	case "POST":
		return resp.MethodNotAllowed(methodPage(405, "is not allowed", req.Method))
	default:
		return resp.NotImplemented(methodPage(501, "is not implemented", req.Method))
	}
}

const notFoundBody = "<html>\r\n" +
	"<head><title>Not Found</title></head>\r\n" +
	"<body><p>File not found</p></body>\r\n" +
	"</html>\r\n"

// methodPage repite el token del método tal como llegó.
func methodPage(status int, verdict, method string) string {
	title := strconv.Itoa(status) + " " + http1.StatusText(status)
	return "<html>\r\n" +
		"<head>\r\n" +
		"<title>" + title + "</title>\r\n" +
		"</head>\r\n" +
		"<body>\r\n" +
		"<p>The request method " + method + " " + verdict + "</p>\r\n" +
		"</body>\r\n" +
		"</html>\r\n"
}
