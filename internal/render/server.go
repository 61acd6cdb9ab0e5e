package render

import (
	"context"
	"net"
	"net/http"
	"net/url"
)

// staticServer is the local file server chromedp navigates against while
// rendering outline pages. It binds an ephemeral port so multiple runs
// never collide.
type staticServer struct {
	ln  net.Listener
	srv *http.Server
	url *url.URL
}

// newStaticServer starts serving root on an ephemeral localhost port. The
// caller must call shutdown when done.
func newStaticServer(root string) (*staticServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: http.FileServer(http.Dir(root))}
	go func() {
		_ = srv.Serve(ln)
	}()

	u := &url.URL{Scheme: "http", Host: ln.Addr().String()}
	return &staticServer{ln: ln, srv: srv, url: u}, nil
}

func (s *staticServer) URL() *url.URL {
	return s.url
}

func (s *staticServer) shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
