package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"artforge/internal/service"
)

type errorMessage struct {
	status  int
	message string
}

// Responses carry only these messages; causes stay in the logs.
var kindMessages = map[service.ErrorKind]errorMessage{
	service.KindEmptyPrompt:         {http.StatusBadRequest, "Please describe the image you want to create."},
	service.KindPromptTooShort:      {http.StatusBadRequest, "The description is too short."},
	service.KindPromptTooLong:       {http.StatusBadRequest, "The description is too long."},
	service.KindUnknownStyle:        {http.StatusBadRequest, "The selected style does not exist."},
	service.KindQuotaExceeded:       {http.StatusConflict, "You have reached your image limit. Delete an image to create a new one."},
	service.KindTransport:           {http.StatusBadGateway, "The image service could not be reached. Please try again."},
	service.KindUpstreamStatus:      {http.StatusBadGateway, "The image service failed to create the image. Please try again."},
	service.KindEmptyPayload:        {http.StatusBadGateway, "The image service returned an empty image. Please try again."},
	service.KindWriteFailure:        {http.StatusInternalServerError, "The image could not be saved."},
	service.KindPersistence:         {http.StatusInternalServerError, "The image could not be added to your gallery."},
	service.KindNotFoundOrForbidden: {http.StatusNotFound, "Image not found."},
	service.KindInternal:            {http.StatusInternalServerError, "Something went wrong. Please try again."},
}

func messageFor(kind service.ErrorKind) errorMessage {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return kindMessages[service.KindInternal]
}

func (h HandlerSet) abortWithServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	msg := messageFor(kind)

	event := h.log.Warn()
	if msg.status >= http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).Str("kind", string(kind)).Str("path", c.FullPath()).Msg("request failed")

	body := gin.H{
		"error":   string(kind),
		"message": msg.message,
	}
	if code, ok := service.UpstreamStatusOf(err); ok {
		body["message"] = fmt.Sprintf("%s (status %d)", msg.message, code)
		body["upstream_status"] = code
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(msg.status, body)
}
