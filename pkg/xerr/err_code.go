package xerr

import "net/http"

const (
	ErrInternalServer = 500 // HTTP 500
	ErrStorage        = 501 // HTTP 500, 文件存储失败

	ErrBadRequest       = 1000 // HTTP 400
	ErrInvalidInput     = 1001 // HTTP 400
	ErrMissingParameter = 1002 // HTTP 400
	ErrInvalidJSON      = 1003 // HTTP 400

	ErrValidation   = 1050 // HTTP 422, 字段级校验失败
	ErrSelfDeletion = 1051 // HTTP 422, 不能删除自己的账号

	ErrUnauthenticated = 1100 // HTTP 401
	ErrInvalidToken    = 1101 // HTTP 401
	ErrInvalidPassword = 1102 // HTTP 401

	ErrForbidden        = 1200 // HTTP 403
	ErrInsufficientPriv = 1201 // HTTP 403

	ErrNotFound         = 1300 // HTTP 404
	ErrResourceNotFound = 1301 // HTTP 404

	ErrConflict = 1400 // HTTP 409
	ErrInUse    = 1401 // HTTP 409, 资源仍被引用
)

// HTTPStatus 错误码 -> HTTP 状态码
func HTTPStatus(code int) int {
	switch {
	case code >= 500 && code < 1000:
		return http.StatusInternalServerError
	case code >= 1000 && code < 1050:
		return http.StatusBadRequest
	case code >= 1050 && code < 1100:
		return http.StatusUnprocessableEntity
	case code >= 1100 && code < 1200:
		return http.StatusUnauthorized
	case code >= 1200 && code < 1300:
		return http.StatusForbidden
	case code >= 1300 && code < 1400:
		return http.StatusNotFound
	case code >= 1400 && code < 1500:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
