package handler

import "github.com/labstack/echo/v4"

// Wire format kept compatible with the workshop's existing frontend:
// successes wrap the payload in {success, data, message}, failures carry a
// machine-readable code plus a human message and never a stack trace.

func success(c echo.Context, status int, data any, msg string) error {
	body := echo.Map{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": echo.Map{"message": msg, "code": code}})
}
