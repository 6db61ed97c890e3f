// Standalone drop-rate analysis tool for the artificer economy.
// It simulates the same draws the shop and crafting services make and
// reports how far observed frequencies drift from the configured odds.
package main

import (
	"fmt"
	"math"
	"math/rand"
)

const trials = 1_000_000

func main() {
	fmt.Println("=== Artificer Drop Rate Analysis ===")

	analyzeRecipeTiers(trials)
	analyzeCraftSuccess(0.90, trials)
	analyzePityWindow(trials)
}

// analyzeRecipeTiers replicates the tier draw in the shop service:
// a roll in [1,1000] maps to tier 5 (<=13), 4 (<=50), 3 (<=200), else 2.
func analyzeRecipeTiers(numTrials int) {
	counts := map[int]int{2: 0, 3: 0, 4: 0, 5: 0}

	for i := 0; i < numTrials; i++ {
		roll := rand.Intn(1000) + 1
		switch {
		case roll <= 13:
			counts[5]++
		case roll <= 50:
			counts[4]++
		case roll <= 200:
			counts[3]++
		default:
			counts[2]++
		}
	}

	expected := map[int]float64{5: 0.013, 4: 0.037, 3: 0.150, 2: 0.800}

	fmt.Println("\nRecipe tier distribution (conditional on a drop):")
	for tier := 5; tier >= 2; tier-- {
		actual := float64(counts[tier]) / float64(numTrials)
		fmt.Printf("  tier %d: expected %.4f, actual %.4f (deviation %+.4f)\n",
			tier, expected[tier], actual, actual-expected[tier])
	}
}

// analyzeCraftSuccess replicates the success roll in the craft service
func analyzeCraftSuccess(successProbability float64, numTrials int) {
	successes := 0
	for i := 0; i < numTrials; i++ {
		if rand.Float64() < successProbability {
			successes++
		}
	}

	actual := float64(successes) / float64(numTrials)
	expectedSuccesses := float64(numTrials) * successProbability
	expectedFailures := float64(numTrials) * (1 - successProbability)
	chiSquared := math.Pow(float64(successes)-expectedSuccesses, 2)/expectedSuccesses +
		math.Pow(float64(numTrials-successes)-expectedFailures, 2)/expectedFailures

	fmt.Printf("\nCraft success: expected %.4f, actual %.4f, chi-squared %.4f\n",
		successProbability, actual, chiSquared)
}

// analyzePityWindow replicates the pity-timer re-arm: each drop threshold
// is the current purchase count plus a uniform offset in [4,8], so the
// average gap between recipe drops should land on 6.
func analyzePityWindow(numTrials int) {
	var totalGap int
	for i := 0; i < numTrials; i++ {
		totalGap += 4 + rand.Intn(5)
	}

	fmt.Printf("\nPity window: expected mean gap 6.0, actual %.4f\n",
		float64(totalGap)/float64(numTrials))
}
