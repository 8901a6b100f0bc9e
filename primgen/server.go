package primgen

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/export"
	"github.com/shapeforge/primgan/shapes"
)

// Default request values of the generation endpoints.
const (
	DefaultShape   = "cube"
	DefaultTexture = "wood"
	DefaultColor   = "#6952BE"

	DefaultTextShape   = "sphere"
	DefaultTextTexture = "metallic"
	DefaultTextColor   = "#FF00FF"
)

// A Server exposes an Engine over HTTP.
//
// Generated bundles are served from Engine's output directory under /files.
type Server struct {
	Engine *Engine

	// Options returns the shape and texture names offered to clients. If
	// nil, the engine taxonomy and Textures are used.
	Options func() (shapeNames, textureNames []string, err error)

	// Textures lists the texture names offered when Options is nil, and
	// recognized by text requests.
	Textures []string

	// FrontendDir, if set, is served for unmatched paths.
	FrontendDir string
}

type GenerateRequest struct {
	Shape   string `json:"shape"`
	Texture string `json:"texture"`
	Color   string `json:"color"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type GenerateResponse struct {
	ZipURL string `json:"zip_url"`
}

type OptionsResponse struct {
	Shapes   []string `json:"shapes"`
	Textures []string `json:"textures"`
}

// Router creates the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), allowCORS)
	api := r.Group("/api")
	{
		api.GET("/options", s.handleOptions)
		api.POST("/generate-object", s.handleGenerate)
		api.POST("/generate-from-text", s.handleGenerateText)
	}
	r.Static("/files", s.Engine.config.OutputDir)
	if s.FrontendDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.FrontendDir))))
	}
	return r
}

func (s *Server) handleOptions(c *gin.Context) {
	if s.Options != nil {
		shapeNames, textureNames, err := s.Options()
		if err == nil && len(shapeNames) > 0 && len(textureNames) > 0 {
			c.JSON(http.StatusOK, OptionsResponse{Shapes: shapeNames, Textures: textureNames})
			return
		}
		log.Printf("falling back to default options: %v", err)
	}
	c.JSON(http.StatusOK, OptionsResponse{
		Shapes:   s.Engine.Taxonomy().Names(),
		Textures: s.textures(),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	req := GenerateRequest{Shape: DefaultShape, Texture: DefaultTexture, Color: DefaultColor}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bundle := strings.Join([]string{req.Shape, req.Texture, strings.TrimPrefix(req.Color, "#")}, "_")
	s.generate(c, &req, bundle)
}

func (s *Server) handleGenerateText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty text"})
		return
	}
	attrs := ExtractAttributes(text, s.textures())
	genReq := GenerateRequest{Shape: attrs.Shape, Texture: attrs.Texture, Color: attrs.Color}
	if genReq.Shape == "" {
		genReq.Shape = DefaultTextShape
	}
	if genReq.Texture == "" {
		genReq.Texture = DefaultTextTexture
	}
	if genReq.Color == "" {
		genReq.Color = DefaultTextColor
	}
	log.Printf("text request %q: %+v", text, genReq)
	s.generate(c, &genReq, "text_"+genReq.Shape)
}

func (s *Server) generate(c *gin.Context, req *GenerateRequest, bundle string) {
	paths, err := s.Engine.GenerateAsset(req.Shape, req.Color, req.Texture)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shapes.ErrInvalidClass) || errors.Is(err, export.ErrInvalidColor) {
			status = http.StatusBadRequest
		}
		log.Printf("generate %+v: %v", req, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	zipPath, err := paths.Zip(sanitizeName(bundle))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rel, err := filepath.Rel(s.Engine.config.OutputDir, zipPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{ZipURL: "/files/" + filepath.ToSlash(rel)})
}

func (s *Server) textures() []string {
	if len(s.Textures) == 0 {
		return []string{DefaultTexture, "stone", DefaultTextTexture}
	}
	return s.Textures
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
}

func allowCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
