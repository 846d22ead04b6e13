package pairs

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/omniswap-engine/internal/domain"
)

const (
	PairsBucket = "verified_pairs"

	DefaultStorePath = "./data/pairs.db"
)

// StoredPair is the persisted form of a verified pair. Big integers are
// serialized as decimal strings.
type StoredPair struct {
	ChainID      string    `json:"chainId"`
	DexID        string    `json:"dexId"`
	PairAddress  string    `json:"pairAddress"`
	Router       string    `json:"router"`
	TokenA       string    `json:"tokenA"`
	TokenB       string    `json:"tokenB"`
	OutputAmount string    `json:"outputAmount"`
	ProbeAmount  string    `json:"probeAmount"`
	VerifiedAt   time.Time `json:"verifiedAt"`
}

// Store is the warm store for verified pairs. Verification results survive
// restarts so known-good pairs skip the on-chain round trips.
type Store struct {
	db *boltdb.BoltDatabase
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultStorePath
	}
	os.MkdirAll(filepath.Dir(path), 0755)

	db := boltdb.NewBoltDatabase(path)
	if db == nil {
		return nil, fmt.Errorf("failed to open pair store at %s", path)
	}
	log.Info().Str("path", path).Msg("[pairStore] opened database")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// pairKey identifies a verified pair independent of token order.
func pairKey(chainID domain.ChainID, dexID, tokenA, tokenB string) string {
	a, b := strings.ToLower(tokenA), strings.ToLower(tokenB)
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%s:%s:%s", chainID, dexID, a, b)
}

func (s *Store) Save(pair *domain.VerifiedPair) error {
	stored := StoredPair{
		ChainID:     string(pair.ChainID),
		DexID:       pair.DexID,
		PairAddress: pair.PairAddress,
		Router:      pair.Router,
		TokenA:      pair.TokenA,
		TokenB:      pair.TokenB,
		VerifiedAt:  pair.VerifiedAt,
	}
	if pair.OutputAmount != nil {
		stored.OutputAmount = pair.OutputAmount.String()
	}
	if pair.ProbeAmount != nil {
		stored.ProbeAmount = pair.ProbeAmount.String()
	}

	data, err := sonic.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal pair: %w", err)
	}
	return s.db.Set(PairsBucket, []byte(pairKey(pair.ChainID, pair.DexID, pair.TokenA, pair.TokenB)), data)
}

// Get returns the stored verification for the token pair on one exchange,
// or nil when none is recorded. Token order does not matter. The warm
// store is best-effort: read problems report as a miss.
func (s *Store) Get(chainID domain.ChainID, dexID, tokenA, tokenB string) (*domain.VerifiedPair, error) {
	data, err := s.db.Get(PairsBucket, []byte(pairKey(chainID, dexID, tokenA, tokenB)))
	if err != nil || len(data) == 0 {
		return nil, nil
	}

	var stored StoredPair
	if err := sonic.Unmarshal(data, &stored); err != nil {
		log.Warn().Err(err).Msg("[pairStore] corrupt entry, treating as miss")
		return nil, nil
	}
	return storedToPair(&stored), nil
}

// LoadAll returns every verified pair in the store.
func (s *Store) LoadAll() ([]*domain.VerifiedPair, error) {
	data, err := s.db.List(PairsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}

	pairs := make([]*domain.VerifiedPair, 0, len(data))
	failed := 0
	for key, value := range data {
		var stored StoredPair
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("[pairStore] failed to unmarshal pair, skipping")
			failed++
			continue
		}
		pairs = append(pairs, storedToPair(&stored))
	}
	if failed > 0 {
		log.Error().Int("loaded", len(pairs)).Int("failed", failed).Msg("[pairStore] pair loading completed with errors")
	}
	return pairs, nil
}

func storedToPair(stored *StoredPair) *domain.VerifiedPair {
	pair := &domain.VerifiedPair{
		ChainID:     domain.ChainID(stored.ChainID),
		DexID:       stored.DexID,
		PairAddress: stored.PairAddress,
		Router:      stored.Router,
		TokenA:      stored.TokenA,
		TokenB:      stored.TokenB,
		VerifiedAt:  stored.VerifiedAt,
	}
	if stored.OutputAmount != "" {
		pair.OutputAmount, _ = new(big.Int).SetString(stored.OutputAmount, 10)
	}
	if stored.ProbeAmount != "" {
		pair.ProbeAmount, _ = new(big.Int).SetString(stored.ProbeAmount, 10)
	}
	return pair
}
