// Package sankhya implementa o client da API Sankhya: login legado com cache
// de bearerToken por usuário e a consulta de produtos usada na conferência.
package sankhya

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/repository"
	"github.com/metascan/metascan-api/internal/infrastructure/tokencache"
	"github.com/metascan/metascan-api/pkg/config"
	"github.com/metascan/metascan-api/pkg/logger"
)

const consultaProdutosService = "ConsultaProdutosSP.consultaProdutos"

var _ audit.ProductLookup = (*Client)(nil)

// Client client HTTP da Sankhya. Implementa audit.ProductLookup.
type Client struct {
	cfg      config.SankhyaConfig
	http     *http.Client
	cache    tokencache.Cache
	userRepo repository.UserRepository
	log      *logger.Logger
}

// NewClient constrói o client. O timeout por tentativa vem da configuração.
func NewClient(cfg config.SankhyaConfig, cache tokencache.Cache, userRepo repository.UserRepository, log *logger.Logger) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		cache:    cache,
		userRepo: userRepo,
		log:      log,
	}
}

// serviceRequest envelope das chamadas de serviço da Sankhya.
type serviceRequest struct {
	ServiceName string `json:"serviceName"`
	RequestBody struct {
		Produto struct {
			Codigo string `json:"codigo"`
		} `json:"produto"`
	} `json:"requestBody"`
}

// wrappedValue os campos da Sankhya vêm embrulhados em {"$": "valor"}.
type wrappedValue struct {
	Value string `json:"$"`
}

type produtoPayload struct {
	Codigo      wrappedValue `json:"CODPROD"`
	Descricao   wrappedValue `json:"DESCRPROD"`
	Marca       wrappedValue `json:"MARCA"`
	RefFornec   wrappedValue `json:"REFFORN"`
	Localizacao wrappedValue `json:"LOCALIZACAO"`
	PrecoBase   wrappedValue `json:"PRECOBASE"`
	Estoque     wrappedValue `json:"ESTOQUE"`
	Unidade     wrappedValue `json:"CODVOL"`
}

// produtoList aceita tanto objeto único quanto array em "produto".
type produtoList []produtoPayload

func (p *produtoList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var list []produtoPayload
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var one produtoPayload
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*p = produtoList{one}
	return nil
}

type serviceResponse struct {
	Status       string `json:"status"`
	ResponseBody struct {
		Produtos struct {
			Produto produtoList `json:"produto"`
		} `json:"produtos"`
	} `json:"responseBody"`
	StatusMessage string `json:"statusMessage"`
}

// Lookup consulta um produto pelo código em nome do usuário.
// Erros transitórios (502/503/504, timeout) são repetidos com backoff
// (attempt+1)*2s até MaxRetries; 401/403 invalida o token em cache e força um
// login novo; produto ausente é terminal (domain.ErrProductNotFound).
func (c *Client) Lookup(ctx context.Context, productCode, userID string) (*audit.ProductInfo, error) {
	token, err := c.bearerToken(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	refreshed := false
	for attempt := 0; ; attempt++ {
		info, retryable, authFailed, err := c.consultaProdutos(ctx, token, productCode)
		if err == nil {
			return info, nil
		}

		if authFailed && !refreshed {
			// Token expirado ou revogado: invalida e tenta exatamente um login novo.
			refreshed = true
			if cerr := c.cache.Invalidate(ctx, userID); cerr != nil {
				c.log.Warn().Err(cerr).Str("user_id", userID).Msg("falha ao invalidar token em cache")
			}
			token, err = c.bearerToken(ctx, userID, true)
			if err != nil {
				return nil, err
			}
			continue
		}
		if retryable && attempt < c.cfg.MaxRetries {
			backoff := time.Duration(attempt+1) * 2 * time.Second
			c.log.Warn().Err(err).Str("product_code", productCode).
				Dur("backoff", backoff).Int("attempt", attempt+1).
				Msg("consulta Sankhya transitória, repetindo")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		return nil, err
	}
}

// consultaProdutos executa uma tentativa da chamada de serviço.
// Devolve retryable=true para falhas transitórias e authFailed=true para 401/403.
func (c *Client) consultaProdutos(ctx context.Context, token, productCode string) (info *audit.ProductInfo, retryable, authFailed bool, err error) {
	var sreq serviceRequest
	sreq.ServiceName = consultaProdutosService
	sreq.RequestBody.Produto.Codigo = productCode
	payload, err := json.Marshal(sreq)
	if err != nil {
		return nil, false, false, fmt.Errorf("montar consulta: %w", err)
	}

	url := fmt.Sprintf("%s/gateway/v1/mge/service.sbr?serviceName=%s&outputType=json",
		c.cfg.BaseURL, consultaProdutosService)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, false, false, fmt.Errorf("montar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTransient(err) {
			return nil, true, false, fmt.Errorf("%w: %v", domain.ErrSankhyaUnavailable, err)
		}
		return nil, false, false, fmt.Errorf("%w: %v", domain.ErrSankhyaUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, false, fmt.Errorf("%w: ler resposta: %v", domain.ErrSankhyaUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, true, fmt.Errorf("%w: consulta rejeitada (%d)", domain.ErrSankhyaAuth, resp.StatusCode)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, true, false, fmt.Errorf("%w: upstream devolveu %d", domain.ErrSankhyaUnavailable, resp.StatusCode)
	case http.StatusNotFound:
		return nil, false, false, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productCode)
	case http.StatusOK:
		// segue
	default:
		return nil, false, false, fmt.Errorf("%w: consulta devolveu %d", domain.ErrSankhyaUnavailable, resp.StatusCode)
	}

	var sresp serviceResponse
	if err := json.Unmarshal(body, &sresp); err != nil {
		return nil, false, false, fmt.Errorf("%w: decodificar resposta: %v", domain.ErrSankhyaUnavailable, err)
	}
	produtos := sresp.ResponseBody.Produtos.Produto
	if len(produtos) == 0 || produtos[0].Codigo.Value == "" {
		return nil, false, false, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productCode)
	}

	p := produtos[0]
	return &audit.ProductInfo{
		Code:              p.Codigo.Value,
		Description:       p.Descricao.Value,
		Brand:             p.Marca.Value,
		SupplierReference: p.RefFornec.Value,
		Location:          p.Localizacao.Value,
		BasePrice:         p.PrecoBase.Value,
		Stock:             p.Estoque.Value,
		Unit:              p.Unidade.Value,
	}, false, false, nil
}

// isTransient decide se um erro de rede merece retry (timeout, conexão recusada).
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
