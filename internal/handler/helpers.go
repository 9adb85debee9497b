package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"caffito/internal/apierror"
	"caffito/internal/barcode"
	"caffito/internal/dto"
	"caffito/internal/etiqueta"
	"caffito/internal/middleware"
	"caffito/internal/model"
	"caffito/internal/pos"
	"caffito/internal/pricing"
	"caffito/internal/repository"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for list filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func indiceParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("idx"))
	if err != nil || i < 0 {
		c.JSON(http.StatusBadRequest, apierror.New("indice invalido"))
		return 0, false
	}
	return i, true
}

// usuarioActual returns the authenticated user's ID from the JWT claims.
func usuarioActual(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.UserID)
	return id
}

// lista writes a paginated envelope and mirrors the total in X-Total-Count.
func lista[T any](c *gin.Context, l dto.Lista[T]) {
	c.Header("X-Total-Count", strconv.FormatInt(l.Total, 10))
	c.JSON(http.StatusOK, l)
}

// ── Error mapping ─────────────────────────────────────────────────────────────

var (
	erroresNoEncontrado = []error{service.ErrNoEncontrado, repository.ErrCarritoNoEncontrado}
	erroresConflicto    = []error{service.ErrDuplicado, service.ErrCajaYaAbierta, service.ErrFacturaAnulada}
	erroresAuth         = []error{service.ErrCredenciales, service.ErrTokenInvalido}
	erroresNegocio      = []error{
		// register
		pos.ErrRenglonInexistente, pos.ErrPagoInexistente, pos.ErrCantidadInvalida,
		pos.ErrPesoInvalido, pos.ErrPrecioInvalido, pos.ErrRenglonPesado,
		pos.ErrRequierePeso, pos.ErrDetalleVacio, pos.ErrMontoInvalido,
		pos.ErrMontoExcedeRestante, pos.ErrDescuentoExcedeSubtotal,
		pos.ErrPromocionInvalida, pos.ErrFacturaVacia, pos.ErrPagoIncompleto,
		pos.ErrExcedenteNoEfectivo,
		// prices
		pricing.ErrCostoCero, pricing.ErrCostoNegativo, pricing.ErrGananciaNegativa,
		pricing.ErrVentaNegativa, pricing.ErrAumentoInvalido, model.ErrSinPrecioActivo,
		// codes and labels
		barcode.ErrCodigoNoNumerico, barcode.ErrNoPesable, barcode.ErrImporteInvalido,
		etiqueta.ErrSinEtiquetas, etiqueta.ErrCantidadInvalida,
		// services
		service.ErrCajaNoAbierta, service.ErrLimiteCredito, service.ErrConsumidorFinal,
		service.ErrInactivo, service.ErrPromocionNoVigente, service.ErrObservacionesRequeridas,
		service.ErrIDInvalido, service.ErrEntradaVacia, service.ErrPromocionSinDescuento,
		service.ErrConsumidorFinalUnico, service.ErrMontoNegativo, service.ErrArchivoInvalido,
	}
)

func esAlguno(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusDe maps a service error to its HTTP status; anything unknown is 500.
func statusDe(err error) int {
	switch {
	case esAlguno(err, erroresNoEncontrado):
		return http.StatusNotFound
	case esAlguno(err, erroresConflicto):
		return http.StatusConflict
	case esAlguno(err, erroresAuth):
		return http.StatusUnauthorized
	case esAlguno(err, erroresNegocio):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// responderError writes the error envelope. Internal errors are attached to
// the context for ErrorHandler to log and answered with a generic message.
func responderError(c *gin.Context, err error) {
	status := statusDe(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
