package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadImage handles POST /api/upload-image.
// With an ImgBB API key configured the file is proxied to the external
// image host and its URL returned; otherwise it is saved under ./uploads
// and served from BASE_URL.
func (h *Handlers) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// The storefront also posts under the generic "file" field name.
		fileHeader, err = c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
	}

	if h.Cfg.ImgBBKey != "" {
		url, err := h.proxyToImageHost(fileHeader)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image to host"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}

	// Local fallback: uuid filename under ./uploads.
	uploadPath := "./uploads"
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		os.Mkdir(uploadPath, 0755)
	}

	ext := filepath.Ext(fileHeader.Filename)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	savePath := filepath.Join(uploadPath, newFilename)

	if err := c.SaveUploadedFile(fileHeader, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s/uploads/%s", h.Cfg.BaseURL, newFilename),
	})
}

// proxyToImageHost re-posts the multipart file to the ImgBB upload API and
// returns the hosted URL. Fire-and-wait; no retry policy.
func (h *Handlers) proxyToImageHost(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("image", fileHeader.Filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	uploadURL := fmt.Sprintf("https://api.imgbb.com/1/upload?key=%s", h.Cfg.ImgBBKey)
	resp, err := http.Post(uploadURL, writer.FormDataContentType(), pr)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned %d", resp.StatusCode)
	}

	var out struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Data.URL, nil
}
