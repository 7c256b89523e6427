package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skufu/symptomdx/internal/diagnosis"
	"github.com/Skufu/symptomdx/internal/doctors"
	"github.com/Skufu/symptomdx/internal/logging"
	"github.com/Skufu/symptomdx/internal/metrics"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type DoctorFinder interface {
	FindVerified(ctx context.Context, specializations []string, location string) ([]doctors.Doctor, error)
}

// DoctorAdmin is the write side of the doctor directory.
type DoctorAdmin interface {
	Register(ctx context.Context, d doctors.Doctor) (doctors.Doctor, error)
	ListByStatus(ctx context.Context, status string) ([]doctors.Doctor, error)
	Verify(ctx context.Context, id int64) (doctors.Doctor, error)
}

type searchRequest struct {
	Symptoms []string `json:"symptoms"`
	Location string   `json:"location"`
}

type specializationSearchRequest struct {
	Specialization string `json:"specialization"`
	Location       string `json:"location"`
}

type registerRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Hospital       string `json:"hospital"`
	Location       string `json:"location"`
}

type verifyRequest struct {
	DoctorID any `json:"doctorId"`
}

const (
	errDoctorLookup    = "Error retrieving doctors."
	errDirectoryOff    = "doctor directory is disabled"
	errInvalidDoctorID = "Invalid Doctor ID"
	errDoctorNotFound  = "Doctor not found"
	msgDoctorVerified  = "Doctor successfully verified!"
	directoryTimeout   = 5 * time.Second
)

func setupRouter(pipeline *diagnosis.Pipeline, db HealthChecker, finder DoctorFinder, admin DoctorAdmin) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if pipeline == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "model": "not loaded"})
			return
		}
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"model":  "ok",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "model": "ok", "db": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/symptoms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symptoms": pipeline.Schema().Symptoms()})
	})

	// The prediction contract always answers 200; failures go in the error field.
	router.POST("/predict", func(c *gin.Context) {
		start := time.Now()
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusOK, failPrediction(c, diagnosis.InvalidRequest(fmt.Errorf("read request body: %w", err)), start))
			return
		}

		presence, err := diagnosis.ParsePresence(body)
		if err != nil {
			c.JSON(http.StatusOK, failPrediction(c, err, start))
			return
		}

		pred, ok := predict(c, pipeline, presence)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, pred)
	})

	router.POST("/api/search", func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if len(req.Symptoms) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No symptoms provided"})
			return
		}
		if strings.TrimSpace(req.Location) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required"})
			return
		}

		start := time.Now()
		pred, err := pipeline.Predict(diagnosis.PresenceFromList(req.Symptoms))
		if err != nil {
			c.JSON(http.StatusInternalServerError, failPrediction(c, err, start))
			return
		}
		metrics.RecordPrediction(pred.Disease, pred.Confidence, time.Since(start))

		found := []doctors.Doctor{}
		if finder != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), directoryTimeout)
			defer cancel()

			found, err = finder.FindVerified(ctx, pred.Specializations, req.Location)
			metrics.RecordDoctorLookup(err)
			if err != nil {
				logging.Error().Err(err).Str("request_id", requestID(c)).Msg("doctor lookup failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": errDoctorLookup})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"confidence":             pred.Confidence,
			"predicted_disease":      pred.Disease,
			"doctor_specializations": strings.Join(pred.Specializations, ", "),
			"doctors":                found,
		})
	})

	router.POST("/api/search-specialization", func(c *gin.Context) {
		var req specializationSearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if strings.TrimSpace(req.Specialization) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Specialization is required"})
			return
		}
		if strings.TrimSpace(req.Location) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required"})
			return
		}
		if finder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errDirectoryOff})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), directoryTimeout)
		defer cancel()

		found, err := finder.FindVerified(ctx, []string{req.Specialization}, req.Location)
		metrics.RecordDoctorLookup(err)
		if err != nil {
			logging.Error().Err(err).Str("request_id", requestID(c)).Msg("doctor lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": errDoctorLookup})
			return
		}
		c.JSON(http.StatusOK, gin.H{"doctors": found})
	})

	router.POST("/api/doctors", func(c *gin.Context) {
		if admin == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errDirectoryOff})
			return
		}
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		d := doctors.Doctor{
			Username:       strings.TrimSpace(req.Username),
			Email:          strings.TrimSpace(req.Email),
			Specialization: strings.TrimSpace(req.Specialization),
			Experience:     req.Experience,
			Hospital:       strings.TrimSpace(req.Hospital),
			Location:       strings.TrimSpace(req.Location),
		}
		if d.Username == "" || d.Email == "" || d.Specialization == "" || d.Location == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email, specialization and location are required"})
			return
		}
		if d.Experience < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "experience must not be negative"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), directoryTimeout)
		defer cancel()

		stored, err := admin.Register(ctx, d)
		switch {
		case errors.Is(err, doctors.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case err != nil:
			logging.Error().Err(err).Str("request_id", requestID(c)).Msg("doctor registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		default:
			logging.Info().Int64("doctor_id", stored.ID).Str("request_id", requestID(c)).Msg("doctor registered")
			c.JSON(http.StatusCreated, stored)
		}
	})

	adminGroup := router.Group("/api/admin")
	adminGroup.GET("/doctors/verified", listDoctors(admin, doctors.StatusVerified))
	adminGroup.GET("/doctors/unverified", listDoctors(admin, doctors.StatusPending))
	adminGroup.POST("/verify-doctor", func(c *gin.Context) {
		if admin == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": errDirectoryOff})
			return
		}
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidDoctorID})
			return
		}
		id, ok := parseDoctorID(req.DoctorID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidDoctorID})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), directoryTimeout)
		defer cancel()

		d, err := admin.Verify(ctx, id)
		switch {
		case errors.Is(err, doctors.ErrDoctorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": errDoctorNotFound})
		case err != nil:
			logging.Error().Err(err).Int64("doctor_id", id).Str("request_id", requestID(c)).Msg("doctor verification failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		default:
			logging.Info().Int64("doctor_id", id).Str("request_id", requestID(c)).Msg("doctor verified")
			c.JSON(http.StatusOK, gin.H{"message": msgDoctorVerified, "doctor": d})
		}
	})

	return router
}

func listDoctors(admin DoctorAdmin, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if admin == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errDirectoryOff})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), directoryTimeout)
		defer cancel()

		found, err := admin.ListByStatus(ctx, status)
		if err != nil {
			logging.Error().Err(err).Str("status", status).Str("request_id", requestID(c)).Msg("doctor listing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": errDoctorLookup})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

// parseDoctorID accepts a positive integer given as a JSON number or string.
func parseDoctorID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id < 1 || id != float64(int64(id)) {
			return 0, false
		}
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || n < 1 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// predict runs the pipeline and writes the error body itself on failure.
func predict(c *gin.Context, pipeline *diagnosis.Pipeline, presence diagnosis.Presence) (diagnosis.Prediction, bool) {
	start := time.Now()
	pred, err := pipeline.Predict(presence)
	if err != nil {
		c.JSON(http.StatusOK, failPrediction(c, err, start))
		return diagnosis.Prediction{}, false
	}
	metrics.RecordPrediction(pred.Disease, pred.Confidence, time.Since(start))
	return pred, true
}

// failPrediction records and logs a pipeline fault and returns the error body.
func failPrediction(c *gin.Context, err error, start time.Time) gin.H {
	kind := diagnosis.KindOf(err)
	metrics.RecordFault(string(kind), time.Since(start))

	event := logging.Error()
	if kind == diagnosis.FaultInvalidRequest {
		event = logging.Warn()
	}
	event.Err(err).Str("kind", string(kind)).Str("request_id", requestID(c)).Msg("prediction failed")

	return gin.H{"error": err.Error()}
}
