package httpapi

import (
	"net/http"

	"github.com/avasilkov/keyvault/internal/server/keymaterial"
	"github.com/gin-gonic/gin"
)

const (
	minGeneratedPasswordLength = 8
	maxGeneratedPasswordLength = 256
)

type generatePasswordRequest struct {
	Length                int  `json:"length"`
	IncludeSpecialSymbols bool `json:"include_special_symbols"`
	IncludeNumbers        bool `json:"include_numbers"`
	IncludeUppercase      bool `json:"include_uppercase"`
	IncludeLowercase      bool `json:"include_lowercase"`
}

func (s *Server) generatePassword(c *gin.Context) {
	var req generatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	if req.Length < minGeneratedPasswordLength || req.Length > maxGeneratedPasswordLength {
		s.badRequest(c, "length must be between 8 and 256")
		return
	}

	password, err := keymaterial.GeneratePassword(keymaterial.PasswordPolicy{
		Length:         req.Length,
		IncludeLower:   req.IncludeLowercase,
		IncludeUpper:   req.IncludeUppercase,
		IncludeNumbers: req.IncludeNumbers,
		IncludeSymbols: req.IncludeSpecialSymbols,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"password": password})
}
