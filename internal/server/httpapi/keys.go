package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/gin-gonic/gin"
)

// maxImportKeySize bounds the uploaded private key file. Real OpenSSH private
// keys are a few kilobytes.
const maxImportKeySize = 64 * 1024

type partialKeyPayload struct {
	ID             int64   `json:"id"`
	KeyName        string  `json:"key_name"`
	KeyDescription *string `json:"key_description"`
	KeyTypeID      int     `json:"key_type_id"`
	KeyType        string  `json:"key_type"`
	KeyTag         *string `json:"key_tag"`
	ExpirationDate *string `json:"expiration_date"`
}

func makeKeyList(items []secrets.PartialSecret) []partialKeyPayload {
	out := make([]partialKeyPayload, 0, len(items))
	for _, item := range items {
		p := partialKeyPayload{
			ID:             item.ID,
			KeyName:        item.Name,
			KeyDescription: item.Description,
			KeyTypeID:      int(item.TypeID),
			KeyType:        item.TypeName,
			KeyTag:         item.Tag,
		}
		if item.ExpirationDate != nil {
			formatted := item.ExpirationDate.Format(time.RFC3339)
			p.ExpirationDate = &formatted
		}
		out = append(out, p)
	}
	return out
}

func (s *Server) listActiveKeys(c *gin.Context) {
	items, err := s.secrets.ListActive(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, makeKeyList(items))
}

func (s *Server) listRevokedKeys(c *gin.Context) {
	items, err := s.secrets.ListRevoked(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, makeKeyList(items))
}

func (s *Server) listExpiredKeys(c *gin.Context) {
	items, err := s.secrets.ListExpired(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, makeKeyList(items))
}

type createKeyRequest struct {
	KeyName        string  `json:"key_name"`
	KeyValue       string  `json:"key_value"`
	KeyDescription *string `json:"key_description"`
	TypeID         int     `json:"type_id"`
	KeyTag         *string `json:"key_tag"`
	ExpirationDate *string `json:"expiration_date"`
}

func (s *Server) createKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	expiration, ok := parseExpiration(req.ExpirationDate)
	if !ok {
		s.badRequest(c, "expiration_date must be RFC 3339")
		return
	}

	_, err := s.secrets.Create(c.Request.Context(), currentUserID(c), &secrets.CreateRequest{
		Name:           req.KeyName,
		Value:          req.KeyValue,
		Description:    req.KeyDescription,
		TypeID:         req.TypeID,
		Tag:            req.KeyTag,
		ExpirationDate: expiration,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Key created successfully"})
}

type importKeyMetadata struct {
	KeyName        string  `json:"key_name"`
	KeyValue       string  `json:"key_value"` // the public half
	KeyDescription *string `json:"key_description"`
	KeyTag         *string `json:"key_tag"`
}

// importKey accepts a multipart form: a "json" field with the key metadata
// (key_value carries the public key line) and a "file" field with the private
// key. Format validation happens before any write.
func (s *Server) importKey(c *gin.Context) {
	metadataField := c.PostForm("json")
	if metadataField == "" {
		s.badRequest(c, "missing json form field")
		return
	}

	var metadata importKeyMetadata
	if err := json.Unmarshal([]byte(metadataField), &metadata); err != nil {
		s.badRequest(c, "invalid json form field")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.badRequest(c, "missing private key file")
		return
	}
	if fileHeader.Size > maxImportKeySize {
		s.badRequest(c, "private key file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer file.Close()

	privateKey, err := io.ReadAll(io.LimitReader(file, maxImportKeySize))
	if err != nil {
		s.fail(c, err)
		return
	}

	_, err = s.secrets.Import(c.Request.Context(), currentUserID(c), &secrets.ImportRequest{
		Name:        metadata.KeyName,
		Description: metadata.KeyDescription,
		Tag:         metadata.KeyTag,
		PrivateKey:  string(privateKey),
		PublicKey:   metadata.KeyValue,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Key imported successfully"})
}

type updateKeyRequest struct {
	ExpirationDate *string `json:"expiration_date"`
	Revoked        *bool   `json:"revoked"`
}

// updateKey mutates the only mutable fields of a stored key: its expiration
// date and its revoked flag.
func (s *Server) updateKey(c *gin.Context) {
	id, ok := s.keyID(c)
	if !ok {
		return
	}

	var req updateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}
	if req.ExpirationDate == nil && req.Revoked == nil {
		s.badRequest(c, "nothing to update")
		return
	}

	userID := currentUserID(c)

	if req.ExpirationDate != nil {
		expiration, err := time.Parse(time.RFC3339, *req.ExpirationDate)
		if err != nil {
			s.badRequest(c, "expiration_date must be RFC 3339")
			return
		}
		if err := s.secrets.SetExpiration(c.Request.Context(), id, userID, expiration); err != nil {
			s.fail(c, err)
			return
		}
	}

	if req.Revoked != nil {
		if err := s.secrets.SetRevoked(c.Request.Context(), id, userID, *req.Revoked); err != nil {
			s.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Key updated successfully"})
}

func (s *Server) deleteKey(c *gin.Context) {
	id, ok := s.keyID(c)
	if !ok {
		return
	}

	if err := s.secrets.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Key deleted successfully"})
}

func (s *Server) keyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.badRequest(c, "invalid key id")
		return 0, false
	}
	return id, true
}

func parseExpiration(value *string) (*time.Time, bool) {
	if value == nil {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
