package records

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/yowenter/recordstore/pkg/store"
	"github.com/yowenter/recordstore/pkg/types"
)

// RegisterRoutes wires the record api onto r.
func (rc *RecordController) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/health", rc.HealthHandler)
	r.GET("/api/stats", rc.StatsHandler)
	r.GET("/api/data", rc.ListRecordsHandler)
	r.POST("/api/data", rc.CreateRecordHandler)
	r.PUT("/api/data/:key", rc.UpdateRecordHandler)
	r.DELETE("/api/data/:key", rc.DeleteRecordHandler)
	r.DELETE("/api/data", rc.ClearRecordsHandler)
}

func (rc *RecordController) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &types.HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: types.NowISO(),
	})
}

func (rc *RecordController) ListRecordsHandler(c *gin.Context) {
	records, err := rc.List(c.Request.Context())
	if err != nil {
		log.Errorf("list records err %v", err)
		failJSON(c, http.StatusInternalServerError, "failed to retrieve records")
		return
	}
	c.JSON(http.StatusOK, &types.ListResponse{
		Success: true,
		Data:    records,
		Count:   len(records),
	})
}

func (rc *RecordController) CreateRecordHandler(c *gin.Context) {
	var req types.CreateRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := rc.Create(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		log.Errorf("create record `%s` err %v", req.Key, err)
		failFromErr(c, err, "failed to create record")
		return
	}
	c.JSON(http.StatusCreated, &types.RecordResponse{
		Success: true,
		Data:    rec,
		Message: "Record created successfully",
	})
}

func (rc *RecordController) UpdateRecordHandler(c *gin.Context) {
	key := c.Param("key")
	var req types.UpdateRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := rc.Update(c.Request.Context(), key, req.Value)
	if err != nil {
		log.Errorf("update record `%s` err %v", key, err)
		failFromErr(c, err, "failed to update record")
		return
	}
	c.JSON(http.StatusOK, &types.RecordResponse{
		Success: true,
		Data:    rec,
		Message: "Record updated successfully",
	})
}

func (rc *RecordController) DeleteRecordHandler(c *gin.Context) {
	key := c.Param("key")
	if err := rc.Delete(c.Request.Context(), key); err != nil {
		log.Errorf("delete record `%s` err %v", key, err)
		failFromErr(c, err, "failed to delete record")
		return
	}
	c.JSON(http.StatusOK, &types.MessageResponse{
		Success: true,
		Message: "Record deleted successfully",
	})
}

func (rc *RecordController) ClearRecordsHandler(c *gin.Context) {
	if err := rc.Clear(c.Request.Context()); err != nil {
		log.Errorf("clear records err %v", err)
		failFromErr(c, err, "failed to clear records")
		return
	}
	c.JSON(http.StatusOK, &types.MessageResponse{
		Success: true,
		Message: "All records cleared successfully",
	})
}

func (rc *RecordController) StatsHandler(c *gin.Context) {
	stats, err := rc.Stats(c.Request.Context())
	if err != nil {
		log.Errorf("store stats err %v", err)
		failJSON(c, http.StatusInternalServerError, "failed to compute store stats")
		return
	}
	c.JSON(http.StatusOK, &types.StatsResponse{
		Success: true,
		Stats:   stats,
	})
}

func failJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, &types.ErrorResponse{Success: false, Error: msg})
}

// failFromErr maps service errors onto api statuses: validation
// failures become 400, missing keys 404, anything else the fallback
// message with 500.
func failFromErr(c *gin.Context, err error, fallback string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		failJSON(c, http.StatusBadRequest, ve.Reason)
	case errors.Is(err, store.ErrNotFound):
		failJSON(c, http.StatusNotFound, "record not found")
	default:
		failJSON(c, http.StatusInternalServerError, fallback)
	}
}
