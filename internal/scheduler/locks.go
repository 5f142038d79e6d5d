package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// lockSafetyBuffer estende o TTL do lock além do intervalo do ciclo, limitando
// por quanto tempo um processo travado pode bloquear a próxima execução.
const lockSafetyBuffer = 5 * time.Minute

// CycleLocker é o recorte do cliente chave-valor usado para exclusão mútua
// entre processos. A aquisição segue a semântica SET NX EX; a liberação só
// remove o lock se o token ainda for o do próprio portador.
type CycleLocker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) (bool, error)
}

// runExclusive executa fn somente com o lock da chave em mãos. Lock em uso
// significa que outra instância já roda este ciclo: a vez é pulada, sem fila
// e sem retry. Devolve verdadeiro quando fn executou.
func runExclusive(ctx context.Context, locker CycleLocker, key string, ttl time.Duration, fn func()) bool {
	token := uuid.NewString()

	acquired, err := locker.Acquire(ctx, key, token, ttl)
	if err != nil {
		logrus.WithError(err).WithField("lock_key", key).Error("Erro ao adquirir o lock do ciclo")
		return false
	}

	if !acquired {
		logrus.WithField("lock_key", key).Info("Lock em uso por outra instância. Pulando a vez.")
		return false
	}

	defer func() {
		if _, err := locker.Release(ctx, key, token); err != nil {
			logrus.WithError(err).WithField("lock_key", key).Error("Erro ao liberar o lock do ciclo")
		}
	}()

	fn()
	return true
}
