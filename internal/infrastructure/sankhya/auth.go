package sankhya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/metascan/metascan-api/internal/domain"
)

// loginResponse corpo devolvido pelo login legado da Sankhya.
type loginResponse struct {
	BearerToken string `json:"bearerToken"`
	Error       *struct {
		Descricao string `json:"descricao"`
	} `json:"error"`
}

// login executa o login legado: POST /login com as credenciais em headers.
// Devolve o bearerToken a usar nas chamadas de serviço.
func (c *Client) login(ctx context.Context, username, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/login", nil)
	if err != nil {
		return "", fmt.Errorf("montar request de login: %w", err)
	}
	req.Header.Set("token", c.cfg.Token)
	req.Header.Set("appkey", c.cfg.AppKey)
	req.Header.Set("username", username)
	req.Header.Set("password", password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login: %v", domain.ErrSankhyaUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: ler resposta de login: %v", domain.ErrSankhyaUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: login rejeitado (%d)", domain.ErrSankhyaAuth, resp.StatusCode)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: login devolveu %d", domain.ErrSankhyaUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: login devolveu %d", domain.ErrSankhyaAuth, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", fmt.Errorf("%w: decodificar login: %v", domain.ErrSankhyaUnavailable, err)
	}
	if lr.BearerToken == "" {
		if lr.Error != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrSankhyaAuth, lr.Error.Descricao)
		}
		return "", fmt.Errorf("%w: login sem bearerToken", domain.ErrSankhyaAuth)
	}
	return lr.BearerToken, nil
}

// bearerToken devolve o token do usuário: cache primeiro, login quando ausente
// ou quando force for true (token rejeitado pelo upstream).
func (c *Client) bearerToken(ctx context.Context, userID string, force bool) (string, error) {
	if !force {
		token, err := c.cache.Get(ctx, userID)
		if err != nil {
			c.log.Warn().Err(err).Str("user_id", userID).Msg("cache de token indisponível, seguindo com login")
		}
		if token != "" {
			return token, nil
		}
	}

	user, err := c.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	if user.SankhyaPassword == "" {
		return "", fmt.Errorf("%w: usuário sem credencial Sankhya", domain.ErrSankhyaAuth)
	}

	token, err := c.login(ctx, user.Username, user.SankhyaPassword)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, userID, token, c.cfg.TokenTTL); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("falha ao gravar token no cache")
	}
	return token, nil
}
