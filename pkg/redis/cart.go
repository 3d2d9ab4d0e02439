package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// Cart lines are stored as one hash per line plus a set of line ids per owner:
//
//	cart:seq             line id counter
//	cart_item:{id}       hash {owner, product_id, quantity, added_at}
//	cart:{owner}:items   set of line ids
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository keeps carts for ttl after their last write. Zero keeps
// them forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func lineKey(id int64) string {
	return fmt.Sprintf("cart_item:%d", id)
}

func ownerKey(owner string) string {
	return fmt.Sprintf("cart:%s:items", owner)
}

func (r *CartRepository) Lines(ctx context.Context, owner string) ([]models.CartLine, error) {
	members, err := r.client.SMembers(ctx, ownerKey(owner)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []models.CartLine{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, member := range members {
		cmds[i] = pipe.HGetAll(ctx, "cart_item:"+member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load cart lines for %s: %w", owner, err)
	}

	lines := make([]models.CartLine, 0, len(members))
	for i, cmd := range cmds {
		id, err := strconv.ParseInt(members[i], 10, 64)
		if err != nil {
			continue
		}
		line, ok := parseLine(id, cmd.Val())
		if !ok {
			// The hash expired before the set; drop the dangling id.
			r.client.SRem(ctx, ownerKey(owner), members[i])
			continue
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (r *CartRepository) Line(ctx context.Context, id int64) (models.CartLine, error) {
	data, err := r.client.HGetAll(ctx, lineKey(id)).Result()
	if err != nil {
		return models.CartLine{}, err
	}
	line, ok := parseLine(id, data)
	if !ok {
		return models.CartLine{}, models.ErrCartItemNotFound
	}
	return line, nil
}

func (r *CartRepository) Insert(ctx context.Context, owner string, productID int64, quantity int) (models.CartLine, error) {
	id, err := r.client.Incr(ctx, "cart:seq").Result()
	if err != nil {
		return models.CartLine{}, fmt.Errorf("failed to allocate cart line id: %w", err)
	}
	line := models.CartLine{
		ID:        id,
		Owner:     owner,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, lineKey(id), map[string]interface{}{
		"owner":      owner,
		"product_id": strconv.FormatInt(productID, 10),
		"quantity":   strconv.Itoa(quantity),
		"added_at":   line.AddedAt.Format(time.RFC3339Nano),
	})
	pipe.SAdd(ctx, ownerKey(owner), strconv.FormatInt(id, 10))
	if err := r.touch(ctx, pipe, owner, id); err != nil {
		return models.CartLine{}, err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return models.CartLine{}, fmt.Errorf("failed to save cart line %d: %w", id, err)
	}
	return line, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, id int64, quantity int) error {
	line, err := r.Line(ctx, id)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, lineKey(id), "quantity", strconv.Itoa(quantity))
	if err := r.touch(ctx, pipe, line.Owner, id); err != nil {
		return err
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	line, err := r.Line(ctx, id)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, lineKey(id))
	pipe.SRem(ctx, ownerKey(line.Owner), strconv.FormatInt(id, 10))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *CartRepository) DeleteOwner(ctx context.Context, owner string) error {
	members, err := r.client.SMembers(ctx, ownerKey(owner)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, member := range members {
		keys = append(keys, "cart_item:"+member)
	}
	keys = append(keys, ownerKey(owner))
	return r.client.Del(ctx, keys...).Err()
}

// touch pushes the expiry of every line of the owner's cart, the written
// line and the owner set forward, so a cart expires as a whole.
func (r *CartRepository) touch(ctx context.Context, pipe redis.Pipeliner, owner string, id int64) error {
	if r.ttl <= 0 {
		return nil
	}
	members, err := r.client.SMembers(ctx, ownerKey(owner)).Result()
	if err != nil {
		return fmt.Errorf("failed to load cart lines for %s: %w", owner, err)
	}
	for _, member := range members {
		pipe.Expire(ctx, "cart_item:"+member, r.ttl)
	}
	pipe.Expire(ctx, lineKey(id), r.ttl)
	pipe.Expire(ctx, ownerKey(owner), r.ttl)
	return nil
}

func parseLine(id int64, data map[string]string) (models.CartLine, bool) {
	if len(data) == 0 {
		return models.CartLine{}, false
	}
	productID, err := strconv.ParseInt(data["product_id"], 10, 64)
	if err != nil {
		return models.CartLine{}, false
	}
	quantity, err := strconv.Atoi(data["quantity"])
	if err != nil {
		return models.CartLine{}, false
	}
	line := models.CartLine{ID: id, Owner: data["owner"], ProductID: productID, Quantity: quantity}
	if addedAt, err := time.Parse(time.RFC3339Nano, data["added_at"]); err == nil {
		line.AddedAt = addedAt
	}
	return line, true
}
