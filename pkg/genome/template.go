package genome

// PersonalityChromosome builds the fixed five-trait behavioral chromosome
// used by trading agents. It is an instantiation of the generic model, not
// a separate representation: the traits are plain numeric genes in [0,1].
func PersonalityChromosome() Chromosome {
	traits := []string{"aggression", "risk_tolerance", "patience", "adaptability", "contrarianism"}

	genes := make([]Gene, len(traits))
	for i, trait := range traits {
		genes[i] = Gene{
			ID:           trait,
			Kind:         GeneNumeric,
			Value:        0.5,
			Min:          0,
			Max:          1,
			MutationProb: 0.1,
		}
	}

	return Chromosome{
		ID:         "personality",
		Kind:       ChromosomeBehavioral,
		Genes:      genes,
		Expression: 1.0,
	}
}

// PerformanceChromosome builds a chromosome of trading-style tunables:
// position sizing, holding horizon and an order-style categorical.
func PerformanceChromosome() Chromosome {
	return Chromosome{
		ID:   "performance",
		Kind: ChromosomePerformance,
		Genes: []Gene{
			{ID: "position_size", Kind: GeneNumeric, Value: 0.1, Min: 0.01, Max: 1, MutationProb: 0.1},
			{ID: "holding_period", Kind: GeneNumeric, Value: 24, Min: 1, Max: 168, MutationProb: 0.1},
			{ID: "stop_loss_pct", Kind: GeneNumeric, Value: 0.05, Min: 0.005, Max: 0.25, MutationProb: 0.1},
			{ID: "order_style", Kind: GeneCategorical, Category: "limit", Choices: []string{"limit", "market", "twap"}, MutationProb: 0.05},
		},
		Expression: 1.0,
	}
}

// AgentTemplate assembles the default agent genome template from the
// personality and performance chromosomes.
func AgentTemplate() (*Genome, error) {
	return New([]Chromosome{PersonalityChromosome(), PerformanceChromosome()})
}
