package redis

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vfg2006/campaign-manager-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// releaseScript apaga a chave do lock somente quando o valor guardado é o
// token do próprio detentor, evitando que um processo solte o lock de outro.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

type Client struct {
	rdb *goredis.Client
}

func NewClient(ctx context.Context, cfg config.Redis) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro ao conectar no redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetClient expõe o cliente go-redis para usos não cobertos pelo wrapper.
func (c *Client) GetClient() *goredis.Client {
	return c.rdb
}

// IncrWindow incrementa o contador da janela e devolve o novo valor.
// A expiração é definida apenas quando o contador nasce nesta chamada,
// preservando o fim da janela corrente para as demais.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("erro ao incrementar o contador %s: %w", key, err)
	}

	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("erro ao definir expiração do contador %s: %w", key, err)
		}
	}

	return count, nil
}

// Acquire tenta adquirir um lock distribuído com SET NX e TTL.
func (c *Client) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao adquirir o lock %s: %w", key, err)
	}

	return ok, nil
}

// Release solta o lock se, e somente se, o token for do detentor atual.
func (c *Client) Release(ctx context.Context, key, token string) (bool, error) {
	result, err := releaseScript.Run(ctx, c.rdb, []string{key}, token).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao liberar o lock %s: %w", key, err)
	}

	deleted, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("resultado inesperado do script de liberação: %T", result)
	}

	return deleted == 1, nil
}

// PushID adiciona um id ao fim da lista.
func (c *Client) PushID(ctx context.Context, list, id string) error {
	if err := c.rdb.RPush(ctx, list, id).Err(); err != nil {
		return fmt.Errorf("erro ao enfileirar em %s: %w", list, err)
	}

	return nil
}

// PopID remove e devolve o primeiro id da lista. Devolve vazio quando a
// lista não tem elementos. O LPOP é atômico: cada id sai para um único
// consumidor mesmo com vários workers concorrentes.
func (c *Client) PopID(ctx context.Context, list string) (string, error) {
	id, err := c.rdb.LPop(ctx, list).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("erro ao desenfileirar de %s: %w", list, err)
	}

	return id, nil
}

// ListLen devolve o tamanho atual da lista.
func (c *Client) ListLen(ctx context.Context, list string) (int64, error) {
	size, err := c.rdb.LLen(ctx, list).Result()
	if err != nil {
		return 0, fmt.Errorf("erro ao medir a lista %s: %w", list, err)
	}

	return size, nil
}

// SetJSON grava um valor serializado com TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao serializar o valor de %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", key, err)
	}

	return nil
}

// GetJSON carrega e desserializa um valor. found é falso quando a chave
// não existe ou já expirou.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("erro ao ler %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("erro ao desserializar o valor de %s: %w", key, err)
	}

	return true, nil
}
