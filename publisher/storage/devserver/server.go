package devserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/storage"
)

var logger = logc.Logger("devserver")

// artifact names are content addresses, hex only
var namePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// max artifact size accepted by the dev server
const maxBlobSize = 256 << 20

// Server is a local artifact store for development. Provers fetch the
// uploaded image and input blobs from it while a run is in flight.
type Server struct {
	dir    string
	engine *gin.Engine
}

func NewServer(dir string) (*Server, error) {
	for _, bucket := range []string{storage.BucketImages, storage.BucketInputs} {
		if err := os.MkdirAll(filepath.Join(dir, bucket), 0755); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		dir:    dir,
		engine: engine,
	}

	engine.PUT("/:bucket/:name", s.handlePut)
	engine.GET("/:bucket/:name", s.handleGet)

	return s, nil
}

func (s *Server) Run(listen string) error {
	logger.Info("artifact server listening on ", listen)
	return s.engine.Run(listen)
}

// Engine exposes the router, for tests
func (s *Server) Engine() http.Handler {
	return s.engine
}

func (s *Server) blobPath(c *gin.Context) (string, bool) {
	bucket := c.Param("bucket")
	name := c.Param("name")

	if bucket != storage.BucketImages && bucket != storage.BucketInputs {
		c.String(http.StatusNotFound, "unknown bucket %s", bucket)
		return "", false
	}
	if !namePattern.MatchString(name) {
		c.String(http.StatusBadRequest, "bad artifact name")
		return "", false
	}

	return filepath.Join(s.dir, bucket, name), true
}

func (s *Server) handlePut(c *gin.Context) {
	path, ok := s.blobPath(c)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBlobSize))
	if err != nil {
		c.String(http.StatusInternalServerError, "read body: %v", err)
		return
	}

	// uploads are content addressed, reject a payload that does not
	// hash to its name
	if storage.ContentAddress(data) != c.Param("name") {
		c.String(http.StatusBadRequest, "content address mismatch")
		return
	}

	// write to a temp name first, then move into place
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		c.String(http.StatusInternalServerError, "store blob: %v", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		c.String(http.StatusInternalServerError, "store blob: %v", err)
		return
	}

	logger.Debugf("stored %s (%d bytes)", path, len(data))
	c.Status(http.StatusCreated)
}

func (s *Server) handleGet(c *gin.Context) {
	path, ok := s.blobPath(c)
	if !ok {
		return
	}

	if _, err := os.Stat(path); err != nil {
		c.String(http.StatusNotFound, "no such artifact")
		return
	}

	c.File(path)
}
