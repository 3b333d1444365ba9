package analytics

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func recordsWithStatus(codes ...int) []Record {
	records := make([]Record, 0, len(codes))
	for _, c := range codes {
		records = append(records, Record{StatusCode: c})
	}
	return records
}

func recordsWithConsumers(ids ...string) []Record {
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, Record{ConsumerID: id})
	}
	return records
}

func TestKonnect_Analytics_StatusCodeDistribution(t *testing.T) {
	t.Parallel()

	got := StatusCodeDistribution(recordsWithStatus(404, 404, 500, 200))
	want := []StatusCodeBucket{
		{StatusCode: 404, Count: 2, Percentage: 50},
		{StatusCode: 200, Count: 1, Percentage: 25},
		{StatusCode: 500, Count: 1, Percentage: 25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("StatusCodeDistribution() mismatch (-want +got):\n%s", diff)
	}
}

func TestKonnect_Analytics_ConsumerDistribution_FirstSeenTieBreak(t *testing.T) {
	t.Parallel()

	got := ConsumerDistribution(recordsWithConsumers("b", "a", "b", "a", "c"), GroupOptions{})
	want := []KeyCount{
		{Key: "b", Count: 2, Percentage: 40},
		{Key: "a", Count: 2, Percentage: 40},
		{Key: "c", Count: 1, Percentage: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ConsumerDistribution() mismatch (-want +got):\n%s", diff)
	}
}

func TestKonnect_Analytics_GroupBy_Empty(t *testing.T) {
	t.Parallel()

	require.NotNil(t, StatusCodeDistribution(nil))
	require.Empty(t, StatusCodeDistribution(nil))
	require.Empty(t, ServiceDistribution([]Record{}, GroupOptions{Nested: true}))
	require.Empty(t, MethodDistribution(nil))
}

func TestKonnect_Analytics_GroupBy_LimitAfterSort(t *testing.T) {
	t.Parallel()

	// The two most frequent consumers appear last in the input.
	records := recordsWithConsumers("a", "b", "c", "d", "e", "f", "f", "f", "e", "e", "e")
	got := ConsumerDistribution(records, GroupOptions{Limit: 2})
	require.Len(t, got, 2)
	require.Equal(t, "e", got[0].Key)
	require.Equal(t, 4, got[0].Count)
	require.Equal(t, "f", got[1].Key)
	require.Equal(t, 3, got[1].Count)

	// Percentages stay relative to the full set.
	require.Equal(t, 36.36, got[0].Percentage)
}

func TestKonnect_Analytics_GroupBy_Nested(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ServiceID: "s2", StatusCode: 500},
		{ServiceID: "s1", StatusCode: 503},
		{ServiceID: "s1", StatusCode: 200},
		{ServiceID: "s2", StatusCode: 200},
		{ServiceID: "s1", StatusCode: 503},
		{ServiceID: "s2", StatusCode: 404},
	}

	got := ServiceDistribution(records, GroupOptions{Nested: true})
	want := []KeyCount{
		{
			Key: "s2", Count: 3, Percentage: 50,
			StatusCodes: []StatusCount{
				{StatusCode: 200, Count: 1},
				{StatusCode: 404, Count: 1},
				{StatusCode: 500, Count: 1},
			},
		},
		{
			Key: "s1", Count: 3, Percentage: 50,
			StatusCodes: []StatusCount{
				{StatusCode: 503, Count: 2},
				{StatusCode: 200, Count: 1},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ServiceDistribution() mismatch (-want +got):\n%s", diff)
	}

	for _, g := range got {
		sum := 0
		for _, n := range g.StatusCodes {
			sum += n.Count
		}
		require.Equal(t, g.Count, sum)
	}
}

func TestKonnect_Analytics_MethodAndRouteDistribution(t *testing.T) {
	t.Parallel()

	records := []Record{
		{HTTPMethod: "POST", RouteID: "r2"},
		{HTTPMethod: "GET", RouteID: "r1"},
		{HTTPMethod: "GET", RouteID: "r2"},
	}

	methods := MethodDistribution(records)
	require.Equal(t, []KeyCount{
		{Key: "GET", Count: 2, Percentage: 66.67},
		{Key: "POST", Count: 1, Percentage: 33.33},
	}, methods)

	routes := RouteDistribution(records, GroupOptions{})
	require.Equal(t, "r2", routes[0].Key)
	require.Equal(t, "r1", routes[1].Key)
}

func TestKonnect_Analytics_GroupBy_Invariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	codes := []int{200, 201, 204, 301, 400, 401, 404, 429, 500, 502, 503}

	for i := 1; i <= 50; i++ {
		records := make([]Record, 0, i)
		for j := 0; j < i; j++ {
			records = append(records, Record{
				StatusCode: codes[rng.Intn(len(codes))],
				ConsumerID: fmt.Sprintf("c%d", rng.Intn(7)),
			})
		}

		groups := GroupBy(records, func(r Record) int { return r.StatusCode }, GroupOptions{Order: KeyOrderAscending})
		count := 0
		pct := 0.0
		for k, g := range groups {
			count += g.Count
			pct += g.Percentage
			if k > 0 {
				prev := groups[k-1]
				require.GreaterOrEqual(t, prev.Count, g.Count)
				if prev.Count == g.Count {
					require.Less(t, prev.Key, g.Key)
				}
			}
		}
		require.Equal(t, len(records), count)
		require.InDelta(t, 100.0, pct, float64(len(groups))*0.005+1e-9)

		consumers := ConsumerDistribution(records, GroupOptions{})
		count = 0
		for _, g := range consumers {
			count += g.Count
		}
		require.Equal(t, len(records), count)
	}
}
