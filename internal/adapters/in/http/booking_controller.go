package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/clinic-booking-service/internal/config"
	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/in"
)

type BookingController struct {
	useCase in.BookingUseCase
	cfg     *config.Config
}

func NewBookingController(useCase in.BookingUseCase, cfg *config.Config) *BookingController {
	return &BookingController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *BookingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.POST("/bookings", c.submitBooking)
		api.GET("/bookings", c.listBookings)
		api.GET("/bookings/availability", c.getAvailability)
		api.GET("/bookings/slots", c.getSlots)
	}
}

type SubmitBookingRequest struct {
	PatientName string `json:"patientName"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Коды причин отказа и сообщения для пользователя
var rejectionReasons = map[error]struct {
	Code    string
	Message string
}{
	domain.ErrIncompleteRequest: {"incomplete_request", "برجاء إكمال جميع البيانات"},
	domain.ErrInvalidPhone:      {"invalid_phone", "رقم الهاتف غير صحيح"},
	domain.ErrPastDate:          {"past_date", "لا يمكن الحجز في تاريخ سابق"},
	domain.ErrInvalidSlot:       {"invalid_slot", "الوقت المختار غير متاح"},
	domain.ErrSlotTaken:         {"slot_taken", "هذا الموعد محجوز بالفعل. برجاء اختيار موعد آخر"},
}

func (c *BookingController) submitBooking(ctx *gin.Context) {
	var req SubmitBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admission, err := c.useCase.SubmitBooking(ctx.Request.Context(), domain.SubmitRequest{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Date:        req.Date,
		Time:        req.Time,
	})
	if err != nil {
		c.rejectionResponse(ctx, err)
		return
	}

	response := gin.H{
		"booking":   admission.Booking,
		"persisted": admission.Persisted,
	}
	if !admission.Persisted {
		// Бронь принята, но не легла в хранилище
		response["warning"] = "booking accepted but not durably persisted"
	}

	ctx.JSON(http.StatusCreated, response)
}

func (c *BookingController) rejectionResponse(ctx *gin.Context, err error) {
	for rejection, reason := range rejectionReasons {
		if errors.Is(err, rejection) {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, domain.ErrSlotTaken) {
				status = http.StatusConflict
			}
			ctx.JSON(status, gin.H{
				"error":   reason.Code,
				"message": reason.Message,
			})
			return
		}
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (c *BookingController) listBookings(ctx *gin.Context) {
	bookings := c.useCase.ListBookings(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func (c *BookingController) getAvailability(ctx *gin.Context) {
	date := ctx.Query("date")
	if date == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	availability, err := c.useCase.GetAvailability(ctx.Request.Context(), date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":         date,
		"availability": availability,
	})
}

func (c *BookingController) getSlots(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"slots": c.useCase.Slots(),
	})
}

func (c *BookingController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
