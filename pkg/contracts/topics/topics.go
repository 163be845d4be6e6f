package topics

const (
	OddsCalculated    = "odds_calculated"
	OddsCalculatedDLQ = "odds_calculated_dlq"

	// Canal Redis Pub/Sub: worker -> odds-service/ws
	ChannelCalculationsBroadcast = "odds_calculations_broadcast"
)
