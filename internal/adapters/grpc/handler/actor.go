package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

const (
	// MetadataActorID は操作者の ID を運ぶメタデータキーです。
	MetadataActorID = "x-actor-id"
	// MetadataActorRole は操作者の役割を運ぶメタデータキーです。
	MetadataActorRole = "x-actor-role"
)

// actorFromContext は受信メタデータから操作者を復元します。
func actorFromContext(ctx context.Context) (actor.Actor, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	id := strings.TrimSpace(firstValue(md, MetadataActorID))
	if id == "" {
		return actor.Actor{}, actor.ErrInvalidActor
	}
	role, err := actor.ParseRole(firstValue(md, MetadataActorRole))
	if err != nil {
		return actor.Actor{}, err
	}
	return actor.Actor{ID: id, Role: role}, nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
