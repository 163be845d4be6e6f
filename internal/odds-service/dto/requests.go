package dto

type ParseCardsRequest struct {
	Cards string `json:"cards"`
}

// CalcRequest: players omitido (0) vira 2
type CalcRequest struct {
	Players        int    `json:"players"`
	HoleCards      string `json:"holeCards"`
	CommunityCards string `json:"communityCards"`
}
