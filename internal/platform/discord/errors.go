package discord

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"onboarder/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// Discord API error codes
const (
	codeMissingAccess      = 50001
	codeMissingPermissions = 50013
	codeCannotMessageUser  = 50007
)

// classify wraps err with the platform sentinel the executor acts on
func classify(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case codeMissingAccess, codeMissingPermissions, codeCannotMessageUser:
				return fmt.Errorf("%w: %w", platform.ErrPermission, err)
			}
		}
		if restErr.Response != nil {
			status := restErr.Response.StatusCode
			switch {
			case status == http.StatusForbidden:
				return fmt.Errorf("%w: %w", platform.ErrPermission, err)
			case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
				return fmt.Errorf("%w: %w", platform.ErrTransient, err)
			}
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", platform.ErrTransient, err)
	}
	return err
}
