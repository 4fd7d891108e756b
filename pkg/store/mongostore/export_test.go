package mongostore

var (
	ToBSON   = toBSON
	FromBSON = fromBSON
	IDToKey  = idToKey
	KeyToID  = keyToID
)
