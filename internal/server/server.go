// Package server exposes the datum transforms over HTTP.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paulmach/orb"

	"github.com/pspoerri/eviltransform/internal/batch"
	"github.com/pspoerri/eviltransform/internal/coord"
	"github.com/pspoerri/eviltransform/internal/encode"
	"github.com/pspoerri/eviltransform/internal/render"
)

// DefaultMaxPoints bounds the points of one transform request.
const DefaultMaxPoints = 100000

// Options configures the HTTP handlers.
type Options struct {
	Mapper    *batch.Mapper // nil uses batch.Default
	MaxPoints int           // <= 0 uses DefaultMaxPoints
	Verbose   bool          // log every request
}

// Point is a coordinate in the request and response bodies.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TransformRequest is the body of POST /v1/transform.
type TransformRequest struct {
	From   string  `json:"from" binding:"required"`
	To     string  `json:"to" binding:"required"`
	Exact  bool    `json:"exact"`
	Points []Point `json:"points" binding:"required"`
}

// TransformResponse is the reply of POST /v1/transform.
type TransformResponse struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// PlotRequest is the body of POST /v1/plot. Points are converted from From
// to WGS-84 before drawing.
type PlotRequest struct {
	From     string  `json:"from" binding:"required"`
	Exact    bool    `json:"exact"`
	Points   []Point `json:"points" binding:"required"`
	Format   string  `json:"format"` // png (default), jpeg, webp
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Mercator bool    `json:"mercator"`
}

// maxPlotSide bounds the plot canvas in pixels.
const maxPlotSide = 4096

// Handler serves the transform endpoints.
type Handler struct {
	mapper    *batch.Mapper
	maxPoints int
}

func NewHandler(opts Options) *Handler {
	h := &Handler{mapper: opts.Mapper, maxPoints: opts.MaxPoints}
	if h.mapper == nil {
		h.mapper = batch.Default
	}
	if h.maxPoints <= 0 {
		h.maxPoints = DefaultMaxPoints
	}
	return h
}

// Setup returns a gin engine with all routes registered.
func Setup(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Verbose {
		r.Use(RequestLog())
	}

	h := NewHandler(opts)
	r.GET("/health", h.Health)
	v1 := r.Group("/v1")
	{
		v1.POST("/transform", h.Transform)
		v1.GET("/delta", h.Delta)
		v1.GET("/distance", h.Distance)
		v1.POST("/plot", h.Plot)
	}
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// datum resolves a request datum. Only the geodetic datums are accepted;
// Web Mercator output would not fit the lat/lng response shape.
func (h *Handler) datum(name string, exact bool) (coord.Projection, bool) {
	switch p := coord.ForName(name).(type) {
	case *coord.WGS84Identity, *coord.BD09:
		return p, true
	case *coord.GCJ02:
		if exact {
			cfg := h.mapper.Config()
			return &coord.GCJ02{Exact: true, Tolerance: cfg.Tolerance, MaxIterations: cfg.MaxIterations}, true
		}
		return p, true
	}
	return nil, false
}

// Transform converts a list of points between datums.
func (h *Handler) Transform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, ok := h.datum(req.From, req.Exact)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported datum: " + req.From})
		return
	}
	to, ok := h.datum(req.To, req.Exact)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported datum: " + req.To})
		return
	}
	if len(req.Points) > h.maxPoints {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many points, max " + strconv.Itoa(h.maxPoints)})
		return
	}
	for _, p := range req.Points {
		if err := coord.Validate(p.Lat, p.Lng); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	lngs := make([]float64, len(req.Points))
	lats := make([]float64, len(req.Points))
	for i, p := range req.Points {
		lngs[i], lats[i] = p.Lng, p.Lat
	}
	outLng, outLat, err := h.mapper.Reproject(from, to, lngs, lats)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := TransformResponse{From: from.Name(), To: to.Name(), Points: make([]Point, len(outLat))}
	for i := range outLat {
		resp.Points[i] = Point{Lat: outLat[i], Lng: outLng[i]}
	}
	c.JSON(http.StatusOK, resp)
}

// Plot renders the posted points as a scatter image.
func (h *Handler) Plot(c *gin.Context) {
	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, ok := h.datum(req.From, req.Exact)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported datum: " + req.From})
		return
	}
	if len(req.Points) > h.maxPoints {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many points, max " + strconv.Itoa(h.maxPoints)})
		return
	}
	if req.Width < 0 || req.Height < 0 || req.Width > maxPlotSide || req.Height > maxPlotSide {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plot size must be within " + strconv.Itoa(maxPlotSide) + " pixels"})
		return
	}
	if req.Format == "" {
		req.Format = "png"
	}
	enc, err := encode.NewEncoder(req.Format, encode.DefaultQuality)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points := make([]orb.Point, len(req.Points))
	for i, p := range req.Points {
		if err := coord.Validate(p.Lat, p.Lng); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		points[i] = orb.Point{p.Lng, p.Lat}
	}
	coord.ProjectGeometry(orb.MultiPoint(points), from, &coord.WGS84Identity{})

	img := render.Scatter(points, render.Options{Width: req.Width, Height: req.Height, Mercator: req.Mercator})
	data, err := enc.Encode(img)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, enc.ContentType(), data)
}

// Delta returns the GCJ-02 offset at a WGS-84 point.
func (h *Handler) Delta(c *gin.Context) {
	lat, lng, ok := queryPoint(c, "lat", "lng")
	if !ok {
		return
	}
	out := coord.OutOfChina(lat, lng)
	var dLat, dLng float64
	if !out {
		dLat, dLng = coord.Delta(lat, lng)
	}
	c.JSON(http.StatusOK, gin.H{"dlat": dLat, "dlng": dLng, "out_of_china": out})
}

// Distance returns the great-circle distance between two points in meters.
func (h *Handler) Distance(c *gin.Context) {
	lat1, lng1, ok := queryPoint(c, "lat1", "lng1")
	if !ok {
		return
	}
	lat2, lng2, ok := queryPoint(c, "lat2", "lng2")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"meters": coord.Distance(lat1, lng1, lat2, lng2)})
}

// queryPoint parses and validates a lat/lng pair from the query string. On
// failure it writes a 400 response and returns ok=false.
func queryPoint(c *gin.Context, latKey, lngKey string) (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + latKey})
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(c.Query(lngKey), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + lngKey})
		return 0, 0, false
	}
	if err := coord.Validate(lat, lng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, 0, false
	}
	return lat, lng, true
}
