package operators

// MaxSchemaVersion is the newest ai.onnx opset covered by Schemas.
const MaxSchemaVersion int64 = 10

// Schemas lists, per ai.onnx operator, the opset versions that introduced a
// new definition, up to MaxSchemaVersion. It drives the support matrix and
// includes common operators this backend does not implement.
var Schemas = map[string][]int64{
	"Abs":                {1, 6},
	"Add":                {1, 6, 7},
	"AveragePool":        {1, 7, 10},
	"BatchNormalization": {1, 6, 7, 9},
	"Ceil":               {1, 6},
	"Clip":               {1, 6},
	"Concat":             {1, 4},
	"Conv":               {1},
	"Cos":                {7},
	"Div":                {1, 6, 7},
	"Dropout":            {1, 6, 7, 10},
	"Elu":                {1, 6},
	"Exp":                {1, 6},
	"Flatten":            {1, 9},
	"Floor":              {1, 6},
	"Gemm":               {1, 6, 7, 9},
	"Identity":           {1},
	"LeakyRelu":          {1, 6},
	"Log":                {1, 6},
	"MatMul":             {1, 9},
	"MaxPool":            {1, 8, 10},
	"Mul":                {1, 6, 7},
	"Neg":                {1, 6},
	"Pow":                {1, 7},
	"Reciprocal":         {1, 6},
	"Relu":               {1, 6},
	"Reshape":            {1, 5},
	"Sigmoid":            {1, 6},
	"Sin":                {7},
	"Softmax":            {1},
	"Sqrt":               {1, 6},
	"Sub":                {1, 6, 7},
	"Tan":                {7},
	"Tanh":               {1, 6},
	"Transpose":          {1},
}
