package redis

import "github.com/mcoot/roomhub/internal/model"

// keyspace builds keys under one prefix:
//
//	<prefix>:room:<id>   JSON room snapshot
//	<prefix>:rooms       SET of live room ids
type keyspace string

func (k keyspace) room(id model.RoomID) string {
	return string(k) + ":room:" + string(id)
}

func (k keyspace) index() string {
	return string(k) + ":rooms"
}
